package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"atlas-backend/internal/domains/post"
	"atlas-backend/internal/domains/post/model"
	"atlas-backend/internal/infrastructure/database"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) post.Repository {
	return &postgresRepository{db: db}
}

const postColumns = `
	id, title, content, cover_image, tags, author_name, author_id, status,
	created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *model.Post) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrStoreUnavailable, err)
	}

	query := `
		INSERT INTO posts (
			id, title, content, cover_image, tags, author_name, author_id,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = pool.Exec(ctx, query,
		p.ID, p.Title, p.Content, p.CoverImage, p.Tags, p.AuthorName, p.AuthorID,
		p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return post.ErrDuplicateTitle
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", post.ErrStoreUnavailable, err)
	}

	query := `SELECT` + postColumns + ` FROM posts WHERE id = $1`

	p := &model.Post{}
	err = pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Content, &p.CoverImage, &p.Tags, &p.AuthorName,
		&p.AuthorID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, post.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, f post.ListFilter) ([]model.Post, int, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", post.ErrStoreUnavailable, err)
	}

	where, args := buildWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM posts` + where
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT%s FROM posts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, f.Limit, f.Offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.CoverImage, &p.Tags, &p.AuthorName,
			&p.AuthorID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, total, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrStoreUnavailable, err)
	}

	tag, err := pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

// buildWhere assembles the filter clause: status always, then the author
// disjunction (id OR case-insensitive name), then the free-text search over
// title, content and tags.
func buildWhere(f post.ListFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}

	authorParts := []string{}
	if f.AuthorID != "" {
		authorParts = append(authorParts, "author_id = "+arg(f.AuthorID))
	}
	if f.AuthorName != "" {
		authorParts = append(authorParts, "LOWER(author_name) = LOWER("+arg(f.AuthorName)+")")
	}
	if len(authorParts) > 0 {
		conds = append(conds, "("+strings.Join(authorParts, " OR ")+")")
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		ph := arg(pattern)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %[1]s OR content ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE %[1]s))", ph))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
