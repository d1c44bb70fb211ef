package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-backend/internal/domains/post"
	"atlas-backend/internal/domains/post/model"
)

// stubService returns canned results so handler tests can focus on wire
// shapes, status codes and cache headers.
type stubService struct {
	listResult *post.ListResult
	getPost    *model.Post
	err        error
	deleteReq  post.DeleteRequest
	listQuery  post.ListQuery
}

func (s *stubService) Create(_ context.Context, _ post.CreatePostRequest) (*model.Post, error) {
	return s.getPost, s.err
}

func (s *stubService) List(_ context.Context, q post.ListQuery) (*post.ListResult, error) {
	s.listQuery = q
	return s.listResult, s.err
}

func (s *stubService) GetByID(_ context.Context, _ string) (*model.Post, error) {
	return s.getPost, s.err
}

func (s *stubService) Delete(_ context.Context, req post.DeleteRequest) error {
	s.deleteReq = req
	return s.err
}

func postRouter(svc post.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPostHandler(svc)
	r := gin.New()
	r.GET("/api/posts", h.List)
	r.POST("/api/posts", h.Create)
	r.GET("/api/posts/:id", h.Get)
	r.DELETE("/api/posts/:id", h.Delete)
	return r
}

func samplePost() *model.Post {
	return &model.Post{
		ID:         uuid.New(),
		Title:      "Atlas Rising",
		Content:    "content",
		AuthorName: "Jane",
		AuthorID:   "a1",
		Status:     model.StatusPublished,
		CreatedAt:  time.Now(),
	}
}

func TestListResponseShapeAndCacheHeader(t *testing.T) {
	svc := &stubService{listResult: &post.ListResult{
		Posts: []model.Post{*samplePost()},
		Total: 1, Page: 1, Pages: 1, Limit: 10,
	}}
	r := postRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300, s-maxage=300", w.Header().Get("Cache-Control"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, key := range []string{"success", "posts", "total", "page", "pages", "limit"} {
		assert.Contains(t, body, key)
	}
}

func TestListDraftsNotCached(t *testing.T) {
	svc := &stubService{listResult: &post.ListResult{Posts: []model.Post{}, Page: 1, Limit: 10}}
	r := postRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?status=draft", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-cache", w.Header().Get("Cache-Control"))
}

func TestListToleratesUnparsableNumbers(t *testing.T) {
	svc := &stubService{listResult: &post.ListResult{
		Posts: []model.Post{}, Page: 1, Pages: 0, Limit: 10,
	}}
	r := postRouter(svc)

	// Garbage limit/page must fall back to the defaults, never a 400.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?limit=abc&page=xyz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, svc.listQuery.Limit)
	assert.Zero(t, svc.listQuery.Page)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?limit=25&page=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, svc.listQuery.Limit)
	assert.Equal(t, 2, svc.listQuery.Page)
}

func TestListDegradesToEmptyWhenStoreDown(t *testing.T) {
	svc := &stubService{err: post.ErrStoreUnavailable}
	r := postRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool         `json:"success"`
		Posts   []model.Post `json:"posts"`
		Total   int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.Posts)
	assert.Zero(t, body.Total)
}

func TestGetSetsCacheHeaderAndUnderscoreID(t *testing.T) {
	p := samplePost()
	svc := &stubService{getPost: p}
	r := postRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/"+p.ID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=600, s-maxage=600", w.Header().Get("Cache-Control"))

	var body struct {
		Success bool                       `json:"success"`
		Post    map[string]json.RawMessage `json:"post"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.Post, "_id")
}

func TestGetErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{post.ErrInvalidID, http.StatusBadRequest, "Invalid post ID"},
		{post.ErrPostNotFound, http.StatusNotFound, "Post not found"},
		{post.ErrStoreUnavailable, http.StatusServiceUnavailable, "Database connection unavailable"},
	}

	for _, tc := range cases {
		r := postRouter(&stubService{err: tc.err})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/whatever", nil))

		assert.Equal(t, tc.code, w.Code)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, tc.message, body.Message)
	}
}

func TestDeletePassesQueryIdentity(t *testing.T) {
	svc := &stubService{}
	r := postRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/posts/some-id?authorId=A1&authorName=Jane", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "some-id", svc.deleteReq.ID)
	assert.Equal(t, "A1", svc.deleteReq.AuthorID)
	assert.Equal(t, "Jane", svc.deleteReq.AuthorName)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestDeleteErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{post.ErrAuthorRequired, http.StatusBadRequest},
		{post.ErrPostNotFound, http.StatusNotFound},
		{post.ErrForbidden, http.StatusForbidden},
	}

	for _, tc := range cases {
		r := postRouter(&stubService{err: tc.err})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/posts/x", nil))
		assert.Equal(t, tc.code, w.Code)
	}
}

func TestCreateErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{post.ErrTitleRequired, http.StatusBadRequest},
		{post.ErrDuplicateTitle, http.StatusConflict},
		{post.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	payload := `{"title":"T","content":"C","authorId":"a1"}`
	for _, tc := range cases {
		r := postRouter(&stubService{err: tc.err})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code)
	}
}
