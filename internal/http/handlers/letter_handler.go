// Letter HTTP handlers.
//
//   - POST /letters        publish (Idempotency-Key replay supported)
//   - GET  /letters        newest-first feed, paginated, optional tag, ETag
//   - GET  /letters/{id}   single letter
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// CreateLetterRequest is the JSON payload for publishing a letter.
type CreateLetterRequest struct {
	Text string `json:"text" binding:"required" example:"I never told you how much that last summer meant."`
	// Tag is optional: Love, Regret, Goodbye, Gratitude, Confession, Rage, Closure.
	Tag string `json:"tag,omitempty" example:"Regret"`
}

// ListLettersResponse wraps a feed page.
type ListLettersResponse struct {
	Letters    []domain.Letter `json:"letters"`
	Pagination Pagination      `json:"pagination"`
}

// CreateLetter godoc
// @ID          createLetter
// @Summary     Publish an anonymous letter
// @Description Supports idempotency via the Idempotency-Key header: the same actor and key return the first letter with Idempotency-Replayed: true.
// @Tags        Letters
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateLetterRequest  true  "Letter"
//
// @Success     201  {object}  domain.Letter
// @Success     200  {object}  domain.Letter  "Replayed"
// @Header      200  {string}  Idempotency-Replayed  "true"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /letters [post]
func (h *Handlers) CreateLetter(c *gin.Context) {
	var req CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	l, replayed, err := h.letters.Create(c.Request.Context(), services.CreateLetterInput{
		ActorIP:        middleware.ActorIP(c),
		IdempotencyKey: key,
		Text:           req.Text,
		Tag:            req.Tag,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmptyLetter):
		fail(c, http.StatusBadRequest, ErrCodeEmpty, "text required")
		return
	case errors.Is(err, services.ErrLetterTooLong):
		fail(c, http.StatusBadRequest, ErrCodeTooLong, "letter too long")
		return
	case errors.Is(err, services.ErrInvalidTag):
		fail(c, http.StatusBadRequest, ErrCodeInvalidTag, "unknown tag: "+strings.Join(domain.Tags, ", "))
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, l)
		return
	}
	ok(c, http.StatusCreated, l)
}

// ListLetters godoc
// @ID          listLetters
// @Summary     Letter feed (paginated)
// @Description Newest first. Only the most recent letters are reachable. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Letters
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"letters:all:12:1700000000\")
// @Param       tag            query   string  false "Filter by tag"  Enums(Love, Regret, Goodbye, Gratitude, Confession, Rage, Closure)
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListLettersResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /letters [get]
func (h *Handlers) ListLetters(c *gin.Context) {
	ctx := c.Request.Context()
	tag := strings.TrimSpace(c.Query("tag"))
	if tag != "" && !domain.ValidTag(tag) {
		fail(c, http.StatusBadRequest, ErrCodeInvalidTag, "unknown tag: "+strings.Join(domain.Tags, ", "))
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, newest, err := h.letters.FeedStats(ctx, tag); err == nil {
		scope := tag
		if scope == "" {
			scope = "all"
		}
		if notModified(c, weakETag("letters", scope, count, newest)) {
			return
		}
	}

	items, total, err := h.letters.ListPage(ctx, tag, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTag) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidTag, "unknown tag")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Letter{}
	}
	ok(c, http.StatusOK, ListLettersResponse{Letters: items, Pagination: newPagination(page, pageSize, total)})
}

// GetLetter godoc
// @ID          getLetter
// @Summary     Get a letter
// @Tags        Letters
// @Produce     json
// @Param       id   path      string  true  "Letter ID"  format(uuid)
// @Success     200  {object}  domain.Letter
// @Failure     404  {object}  handlers.ErrorResponse "Letter not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /letters/{id} [get]
func (h *Handlers) GetLetter(c *gin.Context) {
	l, err := h.letters.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrLetterNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "letter not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, l)
}
