// Comment HTTP handlers.
//
//   - POST /letters/{id}/comments
//   - GET  /letters/{id}/comments   oldest first, paginated, ETag
//
// Posting is subject to the same rules as the interaction guard: a blocklisted
// actor or one that already commented on the letter gets 429 with a reason.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// CreateCommentRequest is the JSON payload for commenting on a letter.
type CreateCommentRequest struct {
	Comment string `json:"comment" binding:"required" example:"This made me call my sister."`
}

// ListCommentsResponse wraps a page of comments.
type ListCommentsResponse struct {
	Comments   []domain.Comment `json:"comments"`
	Pagination Pagination       `json:"pagination"`
}

// CreateComment godoc
// @ID          createComment
// @Summary     Comment on a letter
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "Letter ID"  format(uuid)
// @Param       body  body  handlers.CreateCommentRequest  true  "Comment"
// @Success     201  {object}  domain.Comment
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Letter not found"
// @Failure     429  {object}  handlers.DeniedResponse "Blocked or already commented"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /letters/{id}/comments [post]
func (h *Handlers) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment required")
		return
	}

	cm, err := h.comments.Add(c.Request.Context(), middleware.ActorIP(c), c.Param("id"), req.Comment)
	if deny(c, err) {
		return
	}
	switch {
	case err == nil:
		ok(c, http.StatusCreated, cm)
	case errors.Is(err, services.ErrInvalidRequest):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid actor address")
	case errors.Is(err, services.ErrEmptyComment):
		fail(c, http.StatusBadRequest, ErrCodeEmpty, "comment required")
	case errors.Is(err, services.ErrCommentTooLong):
		fail(c, http.StatusBadRequest, ErrCodeTooLong, "comment too long")
	case errors.Is(err, services.ErrLetterNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "letter not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// ListComments godoc
// @ID          listComments
// @Summary     List comments on a letter
// @Description Oldest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Comments
// @Produce     json
// @Param       id         path   string  true  "Letter ID"  format(uuid)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListCommentsResponse
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Letter not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /letters/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	letterID := c.Param("id")
	page, pageSize := clampPagination(c)

	// A letter without comments and an unknown letter share the same stats,
	// so only non-empty results are eligible for 304.
	if count, newest, err := h.comments.Stats(ctx, letterID); err == nil && count > 0 {
		if notModified(c, weakETag("comments", letterID, count, newest)) {
			return
		}
	}

	items, total, err := h.comments.ListPage(ctx, letterID, page, pageSize)
	switch {
	case errors.Is(err, services.ErrLetterNotFound):
		c.Writer.Header().Del("ETag")
		fail(c, http.StatusNotFound, ErrCodeNotFound, "letter not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Comment{}
	}
	ok(c, http.StatusOK, ListCommentsResponse{Comments: items, Pagination: newPagination(page, pageSize, total)})
}
