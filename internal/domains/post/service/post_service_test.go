package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-backend/internal/domains/post"
	"atlas-backend/internal/domains/post/model"
)

// memoryRepository is an in-memory post.Repository mirroring the SQL
// repository's filter semantics closely enough for service tests.
type memoryRepository struct {
	posts map[uuid.UUID]*model.Post
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{posts: map[uuid.UUID]*model.Post{}}
}

func (r *memoryRepository) Create(_ context.Context, p *model.Post) error {
	for _, existing := range r.posts {
		if existing.Title == p.Title {
			return post.ErrDuplicateTitle
		}
	}
	clone := *p
	r.posts[p.ID] = &clone
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memoryRepository) List(_ context.Context, f post.ListFilter) ([]model.Post, int, error) {
	matched := []model.Post{}
	for _, p := range r.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.AuthorID != "" || f.AuthorName != "" {
			idMatch := f.AuthorID != "" && p.AuthorID == f.AuthorID
			nameMatch := f.AuthorName != "" && strings.EqualFold(p.AuthorName, f.AuthorName)
			if !idMatch && !nameMatch {
				continue
			}
		}
		if f.Search != "" && !matchesSearch(p, f.Search) {
			continue
		}
		matched = append(matched, *p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if f.Offset >= total {
		return []model.Post{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func matchesSearch(p *model.Post, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(tag, needle) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.posts[id]; !ok {
		return post.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func newTestService(repo post.Repository) post.Service {
	return NewPostService(repo, nil, nil)
}

// recordingCleaner captures cover-image removals.
type recordingCleaner struct {
	removed []string
}

func (r *recordingCleaner) Remove(_ context.Context, url string) error {
	r.removed = append(r.removed, url)
	return nil
}

func createReq() post.CreatePostRequest {
	return post.CreatePostRequest{
		Title:    "Atlas Rising",
		Content:  "Some content about maps.",
		AuthorID: "a1",
	}
}

// ========================================
// CREATE
// ========================================

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	req := createReq()
	req.Title = "   "
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, post.ErrTitleRequired)

	req = createReq()
	req.Content = ""
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, post.ErrContentRequired)

	req = createReq()
	req.AuthorID = ""
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, post.ErrAuthorRequired)

	req = createReq()
	req.CoverImage = "not a url"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, post.ErrInvalidCover)
}

func TestCreateDefaults(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	req := createReq()
	req.AuthorID = "  A1  "
	req.AuthorName = "   "
	req.Status = "archived"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "a1", created.AuthorID)
	assert.Equal(t, post.DefaultAuthorName, created.AuthorName)
	assert.Equal(t, model.StatusPublished, created.Status)
}

func TestCreateTruncatesTitleAndPreview(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	req := createReq()
	req.Title = strings.Repeat("t", 300)
	req.Content = strings.Repeat("c", 500)
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, created.Title, post.MaxTitleLen)
	assert.Equal(t, strings.Repeat("c", post.PreviewLen)+"...", created.Content)

	// The stored copy keeps the full content.
	stored := repo.posts[created.ID]
	assert.Len(t, stored.Content, 500)
}

func TestCreateTruncationKeepsRunesIntact(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	// Multibyte input: 300 runes are 900 bytes, so byte-indexed slicing would
	// cut mid-rune and yield invalid UTF-8.
	req := createReq()
	req.Title = strings.Repeat("語", 300)
	req.Content = strings.Repeat("内", 500)
	req.AuthorName = strings.Repeat("名", 150)
	req.Tags = []string{strings.Repeat("タ", 80)}
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(created.Title))
	assert.Equal(t, post.MaxTitleLen, utf8.RuneCountInString(created.Title))

	assert.True(t, utf8.ValidString(created.AuthorName))
	assert.Equal(t, post.MaxAuthorNameLen, utf8.RuneCountInString(created.AuthorName))

	require.Len(t, created.Tags, 1)
	assert.True(t, utf8.ValidString(created.Tags[0]))
	assert.Equal(t, post.MaxTagLen, utf8.RuneCountInString(created.Tags[0]))

	assert.Equal(t, strings.Repeat("内", post.PreviewLen)+"...", created.Content)

	// The stored copy keeps the full content.
	stored := repo.posts[created.ID]
	assert.Equal(t, 500, utf8.RuneCountInString(stored.Content))
}

func TestCreateTagSanitization(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	tags := []string{" Go ", "", "WEB", strings.Repeat("x", 80)}
	for i := 0; i < 8; i++ {
		tags = append(tags, fmt.Sprintf("tag%d", i))
	}
	require.Len(t, tags, 12)

	req := createReq()
	req.Tags = tags
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(created.Tags), post.MaxTags)
	for _, tag := range created.Tags {
		assert.NotEmpty(t, tag)
		assert.LessOrEqual(t, len(tag), post.MaxTagLen)
		assert.Equal(t, strings.ToLower(tag), tag)
	}
	assert.Contains(t, created.Tags, "go")
	assert.Contains(t, created.Tags, "web")
}

func TestCreateDuplicateTitle(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createReq())
	assert.ErrorIs(t, err, post.ErrDuplicateTitle)
}

// ========================================
// LIST
// ========================================

func seedPosts(t *testing.T, svc post.Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		req := createReq()
		req.Title = fmt.Sprintf("Post %d", i)
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestListPaginationClamps(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	seedPosts(t, svc, 3)

	result, err := svc.List(context.Background(), post.ListQuery{Limit: 200, Page: 0})
	require.NoError(t, err)

	assert.Equal(t, post.MaxLimit, result.Limit)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Pages)

	// Unset (or unparsable, arriving as zero) values take the defaults.
	result, err = svc.List(context.Background(), post.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, post.DefaultLimit, result.Limit)
	assert.Equal(t, 1, result.Page)
}

func TestListPageCountConsistent(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	seedPosts(t, svc, 7)

	result, err := svc.List(context.Background(), post.ListQuery{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 3, result.Pages) // ceil(7/3)
	assert.Len(t, result.Posts, 3)

	last, err := svc.List(context.Background(), post.ListQuery{Limit: 3, Page: 3})
	require.NoError(t, err)
	assert.Len(t, last.Posts, 1)
}

func TestListDefaultsToPublished(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	req := createReq()
	req.Status = model.StatusDraft
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req = createReq()
	req.Title = "Published one"
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), post.ListQuery{})
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Published one", result.Posts[0].Title)
}

func TestListSearchCaseInsensitive(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	req := createReq()
	req.Title = "Atlas Rising"
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req = createReq()
	req.Title = "Other"
	req.Content = "unrelated"
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), post.ListQuery{Search: "ATLAS"})
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Atlas Rising", result.Posts[0].Title)
}

func TestListNormalizesAuthorFilter(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	seedPosts(t, svc, 2)

	result, err := svc.List(context.Background(), post.ListQuery{AuthorID: "  A1 "})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = svc.List(context.Background(), post.ListQuery{AuthorID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}

func TestListNewestFirst(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	older := &model.Post{
		ID: uuid.New(), Title: "Older", Content: "c", AuthorID: "a1",
		Status: model.StatusPublished, CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &model.Post{
		ID: uuid.New(), Title: "Newer", Content: "c", AuthorID: "a1",
		Status: model.StatusPublished, CreatedAt: time.Now(),
	}
	repo.posts[older.ID] = older
	repo.posts[newer.ID] = newer

	result, err := svc.List(context.Background(), post.ListQuery{})
	require.NoError(t, err)
	require.Len(t, result.Posts, 2)
	assert.Equal(t, "Newer", result.Posts[0].Title)
	assert.Equal(t, "Older", result.Posts[1].Title)
}

// ========================================
// FETCH
// ========================================

func TestGetByIDInvalidID(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, post.ErrInvalidID)
}

func TestGetByIDDraftLooksAbsent(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	req := createReq()
	req.Status = model.StatusDraft
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, draftErr := svc.GetByID(context.Background(), created.ID.String())
	_, absentErr := svc.GetByID(context.Background(), uuid.NewString())

	// Draft and absent ids are indistinguishable.
	assert.ErrorIs(t, draftErr, post.ErrPostNotFound)
	assert.Equal(t, absentErr, draftErr)
}

func TestGetByIDReturnsFullContent(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	req := createReq()
	req.Content = strings.Repeat("c", 500)
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	fetched, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Len(t, fetched.Content, 500)
}

// ========================================
// DELETE
// ========================================

func TestDeleteRequiresAuthorID(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	err := svc.Delete(context.Background(), post.DeleteRequest{ID: uuid.NewString()})
	assert.ErrorIs(t, err, post.ErrAuthorRequired)
}

func TestDeleteUnknownPost(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	err := svc.Delete(context.Background(), post.DeleteRequest{
		ID: uuid.NewString(), AuthorID: "a1",
	})
	assert.ErrorIs(t, err, post.ErrPostNotFound)
}

func TestDeleteByOwnerID(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	// Case-insensitive: stored id is normalized, caller id is normalized too.
	err = svc.Delete(context.Background(), post.DeleteRequest{
		ID: created.ID.String(), AuthorID: "  A1 ",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.posts)
}

func TestDeleteForbiddenForWrongID(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	created, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), post.DeleteRequest{
		ID: created.ID.String(), AuthorID: "a2",
	})
	assert.ErrorIs(t, err, post.ErrForbidden)
}

func TestDeleteNameNeverOverridesStoredID(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	req := createReq()
	req.AuthorName = "Jane"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	// A matching display name grants nothing once an authorId is stored.
	err = svc.Delete(context.Background(), post.DeleteRequest{
		ID: created.ID.String(), AuthorID: "a2", AuthorName: "Jane",
	})
	assert.ErrorIs(t, err, post.ErrForbidden)
}

func TestDeleteLegacyNameFallback(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	// Legacy post without a stored authorId.
	legacy := &model.Post{
		ID: uuid.New(), Title: "Legacy", Content: "c",
		AuthorName: "Jane", Status: model.StatusPublished, CreatedAt: time.Now(),
	}
	repo.posts[legacy.ID] = legacy

	err := svc.Delete(context.Background(), post.DeleteRequest{
		ID: legacy.ID.String(), AuthorID: "whoever", AuthorName: "jane",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.posts)
}

func TestDeleteRemovesCoverImage(t *testing.T) {
	repo := newMemoryRepository()
	cleaner := &recordingCleaner{}
	svc := NewPostService(repo, nil, cleaner)

	req := createReq()
	req.CoverImage = "https://assets.example.com/bucket/atlas-blog-images/abc.jpg"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), post.DeleteRequest{
		ID: created.ID.String(), AuthorID: "a1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{req.CoverImage}, cleaner.removed)
}

func TestDeleteForbiddenKeepsCoverImage(t *testing.T) {
	repo := newMemoryRepository()
	cleaner := &recordingCleaner{}
	svc := NewPostService(repo, nil, cleaner)

	req := createReq()
	req.CoverImage = "https://assets.example.com/bucket/atlas-blog-images/abc.jpg"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), post.DeleteRequest{
		ID: created.ID.String(), AuthorID: "a2",
	})
	assert.ErrorIs(t, err, post.ErrForbidden)
	assert.Empty(t, cleaner.removed)
}

func TestDeleteLegacyWrongName(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	legacy := &model.Post{
		ID: uuid.New(), Title: "Legacy", Content: "c",
		AuthorName: "Jane", Status: model.StatusPublished, CreatedAt: time.Now(),
	}
	repo.posts[legacy.ID] = legacy

	err := svc.Delete(context.Background(), post.DeleteRequest{
		ID: legacy.ID.String(), AuthorID: "whoever", AuthorName: "John",
	})
	assert.ErrorIs(t, err, post.ErrForbidden)
}
