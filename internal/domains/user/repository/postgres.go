package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"atlas-backend/internal/domains/user"
	"atlas-backend/internal/domains/user/model"
	"atlas-backend/internal/infrastructure/database"
)

const uniqueViolation = "23505"

// postgresRepository implements user.Repository over the lazily connected
// shared pool. Every method acquires the pool first; an unreachable store
// surfaces as user.ErrStoreUnavailable so auth flows can degrade.
type postgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) user.Repository {
	return &postgresRepository{db: db}
}

const userColumns = `
	id, name, email, password_hash, provider, google_id,
	profile_picture, avatar, bio, is_verified, verification_token,
	created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, u *model.User) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	query := `
		INSERT INTO users (
			id, name, email, password_hash, provider, google_id,
			profile_picture, avatar, bio, is_verified, verification_token,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Provider, u.GoogleID,
		u.ProfilePicture, u.Avatar, u.Bio, u.IsVerified, u.VerificationToken,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return user.ErrEmailAlreadyExists
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`

	u := &model.User{}
	err = pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Provider, &u.GoogleID,
		&u.ProfilePicture, &u.Avatar, &u.Bio, &u.IsVerified, &u.VerificationToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	query := `
		UPDATE users SET
			name = $2, email = $3, password_hash = $4,
			profile_picture = $5, avatar = $6, bio = $7,
			is_verified = $8, updated_at = $9
		WHERE id = $1`

	tag, err := pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash,
		u.ProfilePicture, u.Avatar, u.Bio,
		u.IsVerified, time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) LinkGoogle(ctx context.Context, email, googleID, picture string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	// Only fills in a missing google_id: repeated linking is a no-op. An empty
	// picture never clears an existing one.
	query := `
		UPDATE users SET
			google_id = $2,
			profile_picture = COALESCE(NULLIF($3, ''), profile_picture),
			is_verified = TRUE, updated_at = $4
		WHERE email = $1 AND google_id IS NULL`

	if _, err := pool.Exec(ctx, query, email, googleID, picture, time.Now()); err != nil {
		return fmt.Errorf("link google identity: %w", err)
	}
	return nil
}

func (r *postgresRepository) MarkVerified(ctx context.Context, token string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	query := `
		UPDATE users SET is_verified = TRUE, verification_token = NULL, updated_at = $2
		WHERE verification_token = $1`

	tag, err := pool.Exec(ctx, query, token, time.Now())
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrVerifyTokenInvalid
	}
	return nil
}
