package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atlas-backend/internal/domains/post"
	"atlas-backend/internal/domains/post/model"
	"atlas-backend/internal/shared/response"
	"atlas-backend/pkg/logger"
)

// PostHandler exposes the post catalog over HTTP.
type PostHandler struct {
	service post.Service
}

func NewPostHandler(service post.Service) *PostHandler {
	return &PostHandler{service: service}
}

// List handles GET /posts?search=&status=&authorId=&authorName=&limit=&page=.
func (h *PostHandler) List(c *gin.Context) {
	q := post.ListQuery{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		AuthorID:   c.Query("authorId"),
		AuthorName: c.Query("authorName"),
		Limit:      intQuery(c, "limit"),
		Page:       intQuery(c, "page"),
	}

	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		// An unreachable store degrades the public listing to an empty page
		// instead of erroring.
		if errors.Is(err, post.ErrStoreUnavailable) {
			c.JSON(http.StatusOK, gin.H{
				"success": true, "posts": []model.Post{}, "total": 0, "page": 1, "pages": 0,
			})
			return
		}
		logger.Error("list posts", err)
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	status := q.Status
	if status == "" {
		status = model.StatusPublished
	}
	if status == model.StatusPublished {
		c.Header("Cache-Control", "public, max-age=300, s-maxage=300")
	} else {
		c.Header("Cache-Control", "private, no-cache")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"posts":   result.Posts,
		"total":   result.Total,
		"page":    result.Page,
		"pages":   result.Pages,
		"limit":   result.Limit,
	})
}

// intQuery parses a numeric query parameter. Anything unparsable counts as
// unset, so a bad value falls back to the listing defaults instead of a 400.
func intQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// Create handles POST /posts.
func (h *PostHandler) Create(c *gin.Context) {
	var req post.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrTitleRequired):
			response.Fail(c, http.StatusBadRequest, "Title is required")
		case errors.Is(err, post.ErrContentRequired):
			response.Fail(c, http.StatusBadRequest, "Content is required")
		case errors.Is(err, post.ErrAuthorRequired):
			response.Fail(c, http.StatusBadRequest, "Author ID is required")
		case errors.Is(err, post.ErrInvalidCover):
			response.Fail(c, http.StatusBadRequest, "Invalid cover image URL")
		case errors.Is(err, post.ErrDuplicateTitle):
			response.Fail(c, http.StatusConflict, "A post with this title already exists")
		case errors.Is(err, post.ErrStoreUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, "Database connection unavailable")
		default:
			logger.Error("create post", err)
			response.Fail(c, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": created})
}

// Get handles GET /posts/:id. Drafts are served as NotFound, identical in
// shape to an absent id.
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, post.ErrInvalidID):
			response.Fail(c, http.StatusBadRequest, "Invalid post ID")
		case errors.Is(err, post.ErrPostNotFound):
			response.Fail(c, http.StatusNotFound, "Post not found")
		case errors.Is(err, post.ErrStoreUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, "Database connection unavailable")
		default:
			logger.Error("fetch post", err)
			response.Fail(c, http.StatusInternalServerError, "Failed to fetch post")
		}
		return
	}

	c.Header("Cache-Control", "public, max-age=600, s-maxage=600")
	c.JSON(http.StatusOK, gin.H{"success": true, "post": p})
}

// Delete handles DELETE /posts/:id?authorId=&authorName=.
func (h *PostHandler) Delete(c *gin.Context) {
	req := post.DeleteRequest{
		ID:         c.Param("id"),
		AuthorID:   c.Query("authorId"),
		AuthorName: c.Query("authorName"),
	}

	if err := h.service.Delete(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, post.ErrAuthorRequired):
			response.Fail(c, http.StatusBadRequest, "authorId required")
		case errors.Is(err, post.ErrPostNotFound):
			response.Fail(c, http.StatusNotFound, "Post not found")
		case errors.Is(err, post.ErrForbidden):
			response.Fail(c, http.StatusForbidden, "Not authorized to delete this post")
		case errors.Is(err, post.ErrStoreUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, "Database connection unavailable")
		default:
			logger.Error("delete post", err)
			response.Fail(c, http.StatusInternalServerError, "Failed to delete post")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
