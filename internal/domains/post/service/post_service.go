package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"atlas-backend/internal/domains/post"
	"atlas-backend/internal/domains/post/model"
	"atlas-backend/pkg/cache"
	"atlas-backend/pkg/logger"
)

const (
	listCacheTTL = 5 * time.Minute
	postCacheTTL = 10 * time.Minute

	listCachePrefix = "posts:list:"
	postCachePrefix = "posts:id:"
)

type postService struct {
	repo    post.Repository
	cache   cache.Cache
	cleaner post.CoverCleaner
}

// NewPostService builds the catalog service. cache and cleaner may be nil;
// caching and cover cleanup are optimizations, never correctness dependencies.
func NewPostService(repo post.Repository, c cache.Cache, cleaner post.CoverCleaner) post.Service {
	return &postService{repo: repo, cache: c, cleaner: cleaner}
}

// ========================================
// CREATE
// ========================================

func (s *postService) Create(ctx context.Context, req post.CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, post.ErrTitleRequired
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, post.ErrContentRequired
	}
	authorID := strings.ToLower(strings.TrimSpace(req.AuthorID))
	if authorID == "" {
		return nil, post.ErrAuthorRequired
	}

	coverImage := strings.TrimSpace(req.CoverImage)
	if coverImage != "" {
		u, err := url.Parse(coverImage)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, post.ErrInvalidCover
		}
	}

	authorName := truncate(strings.TrimSpace(req.AuthorName), post.MaxAuthorNameLen)
	if authorName == "" {
		authorName = post.DefaultAuthorName
	}

	status := req.Status
	if status != model.StatusDraft && status != model.StatusPublished {
		status = model.StatusPublished
	}

	now := time.Now()
	p := &model.Post{
		ID:         uuid.New(),
		Title:      truncate(title, post.MaxTitleLen),
		Content:    content,
		CoverImage: coverImage,
		Tags:       sanitizeTags(req.Tags),
		AuthorName: authorName,
		AuthorID:   authorID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)

	// The create response carries a content preview only; full content is
	// stored and served by the fetch endpoint.
	preview := *p
	if r := []rune(preview.Content); len(r) > post.PreviewLen {
		preview.Content = string(r[:post.PreviewLen]) + "..."
	}
	return &preview, nil
}

// sanitizeTags keeps at most MaxTags non-empty tags, lowercased, trimmed and
// truncated to MaxTagLen.
func sanitizeTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, truncate(t, post.MaxTagLen))
		if len(out) == post.MaxTags {
			break
		}
	}
	return out
}

// ========================================
// LIST
// ========================================

func (s *postService) List(ctx context.Context, q post.ListQuery) (*post.ListResult, error) {
	status := q.Status
	if status == "" {
		status = model.StatusPublished
	}

	limit := q.Limit
	if limit < 1 {
		limit = post.DefaultLimit
	}
	if limit > post.MaxLimit {
		limit = post.MaxLimit
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	filter := post.ListFilter{
		Search:     strings.TrimSpace(q.Search),
		Status:     status,
		AuthorID:   strings.ToLower(strings.TrimSpace(q.AuthorID)),
		AuthorName: strings.TrimSpace(q.AuthorName),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	// Published listings are cacheable for a short window; anything else is
	// always served fresh.
	cacheable := status == model.StatusPublished && s.cache != nil
	key := listCacheKey(filter, page)
	if cacheable {
		var cached post.ListResult
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &post.ListResult{
		Posts: posts,
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
		Limit: limit,
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, result, listCacheTTL); err != nil {
			logger.Error("cache listing", err)
		}
	}
	return result, nil
}

func listCacheKey(f post.ListFilter, page int) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%d:%d",
		listCachePrefix, f.Status, f.Search, f.AuthorID, f.AuthorName, page, f.Limit)
}

// ========================================
// FETCH
// ========================================

func (s *postService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, post.ErrInvalidID
	}

	key := postCachePrefix + postID.String()
	if s.cache != nil {
		var cached model.Post
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	p, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Unpublished posts are indistinguishable from absent ones on the public
	// fetch path.
	if p.Status != model.StatusPublished {
		return nil, post.ErrPostNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, p, postCacheTTL); err != nil {
			logger.Error("cache post", err)
		}
	}
	return p, nil
}

// ========================================
// DELETE
// ========================================

func (s *postService) Delete(ctx context.Context, req post.DeleteRequest) error {
	callerID := strings.ToLower(strings.TrimSpace(req.AuthorID))
	if callerID == "" {
		return post.ErrAuthorRequired
	}

	postID, err := uuid.Parse(req.ID)
	if err != nil {
		return post.ErrPostNotFound
	}

	p, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if !authorized(p, callerID, strings.TrimSpace(req.AuthorName)) {
		return post.ErrForbidden
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	s.invalidateListings(ctx)
	if s.cache != nil {
		if err := s.cache.Delete(ctx, postCachePrefix+postID.String()); err != nil {
			logger.Error("evict post cache", err)
		}
	}

	// The stored cover image has no other referrer once the post is gone.
	if s.cleaner != nil && p.CoverImage != "" {
		if err := s.cleaner.Remove(ctx, p.CoverImage); err != nil {
			logger.Error("remove cover image", err)
		}
	}
	return nil
}

// authorized implements the ownership rule: a stored authorId is
// authoritative and must match the caller's; only legacy posts without any
// authorId fall back to a case-insensitive display-name match.
func authorized(p *model.Post, callerID, callerName string) bool {
	storedID := strings.ToLower(strings.TrimSpace(p.AuthorID))
	storedName := strings.TrimSpace(p.AuthorName)

	if storedID != "" {
		return storedID == callerID
	}
	return callerName != "" && strings.EqualFold(storedName, callerName)
}

func (s *postService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, listCachePrefix+"*"); err != nil {
		logger.Error("invalidate listing cache", err)
	}
}

// truncate cuts s to at most max runes. Byte slicing would split multibyte
// runes and produce invalid UTF-8.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
