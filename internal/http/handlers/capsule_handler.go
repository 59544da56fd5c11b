// Memory capsule HTTP handlers.
//
//   - POST /capsules        seal a capsule until a future unlock date
//   - GET  /capsules        public unlocked capsules, latest unlock first, ETag
//   - GET  /capsules/{id}   a capsule; content and media withheld while sealed
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/services"
)

// unlockDateLayouts are tried in order. The web client's date picker sends
// local wall time without a zone; that is read as UTC.
var unlockDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// CreateCapsuleRequest is the JSON payload for sealing a capsule.
type CreateCapsuleRequest struct {
	Content string `json:"content" binding:"required" example:"Open this when you finally move out."`
	// UnlockDate is RFC 3339, or YYYY-MM-DDTHH:MM[:SS] read as UTC.
	UnlockDate         string `json:"unlock_date" binding:"required" example:"2027-01-01T00:00:00Z"`
	ImageURL           string `json:"image_url,omitempty" binding:"omitempty,max=2048" example:"https://cdn.example.org/capsule/1.png"`
	AudioURL           string `json:"audio_url,omitempty" binding:"omitempty,max=2048"`
	VideoURL           string `json:"video_url,omitempty" binding:"omitempty,max=2048"`
	EmailForDelivery   string `json:"email_for_delivery,omitempty" binding:"omitempty,email,max=320"`
	AllowPublicSharing bool   `json:"allow_public_sharing" example:"true"`
}

// CapsuleResponse is a single capsule. While Sealed is true the content and
// media fields are absent.
type CapsuleResponse struct {
	Capsule *domain.MemoryCapsule `json:"capsule"`
	Sealed  bool                  `json:"sealed"`
}

// ListCapsulesResponse wraps a page of the public capsule feed.
type ListCapsulesResponse struct {
	Capsules   []domain.MemoryCapsule `json:"capsules"`
	Pagination Pagination             `json:"pagination"`
}

func parseUnlockDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range unlockDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// CreateCapsule godoc
// @ID          createCapsule
// @Summary     Seal a memory capsule
// @Description The unlock date must lie in the future. Media are URLs of already uploaded files.
// @Tags        Capsules
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateCapsuleRequest  true  "Capsule"
// @Success     201  {object}  handlers.CapsuleResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /capsules [post]
func (h *Handlers) CreateCapsule(c *gin.Context) {
	var req CreateCapsuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content and unlock_date required")
		return
	}
	unlock, valid := parseUnlockDate(req.UnlockDate)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidUnlockDate, "unlock_date is not a date")
		return
	}

	cp, err := h.capsules.Create(c.Request.Context(), services.CreateCapsuleInput{
		Content:            req.Content,
		UnlockDate:         unlock,
		ImageURL:           req.ImageURL,
		AudioURL:           req.AudioURL,
		VideoURL:           req.VideoURL,
		EmailForDelivery:   req.EmailForDelivery,
		AllowPublicSharing: req.AllowPublicSharing,
	})
	switch {
	case err == nil:
		ok(c, http.StatusCreated, CapsuleResponse{Capsule: cp})
	case errors.Is(err, services.ErrEmptyCapsule):
		fail(c, http.StatusBadRequest, ErrCodeEmpty, "content required")
	case errors.Is(err, services.ErrCapsuleTooLong):
		fail(c, http.StatusBadRequest, ErrCodeTooLong, "capsule too long")
	case errors.Is(err, services.ErrUnlockDateNotFuture):
		fail(c, http.StatusBadRequest, ErrCodeInvalidUnlockDate, err.Error())
	case errors.Is(err, services.ErrInvalidMediaURL):
		fail(c, http.StatusBadRequest, ErrCodeInvalidMediaURL, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// GetCapsule godoc
// @ID          getCapsule
// @Summary     Open a memory capsule
// @Description Before the unlock date only the schedule is returned (sealed: true). The first read after it reveals the capsule.
// @Tags        Capsules
// @Produce     json
// @Param       id   path      string  true  "Capsule ID"  format(uuid)
// @Success     200  {object}  handlers.CapsuleResponse
// @Failure     404  {object}  handlers.ErrorResponse "Capsule not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /capsules/{id} [get]
func (h *Handlers) GetCapsule(c *gin.Context) {
	cp, sealed, err := h.capsules.Open(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrCapsuleNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "capsule not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if sealed {
		// A cached sealed view would outlive the unlock date.
		c.Header("Cache-Control", "no-store")
	}
	ok(c, http.StatusOK, CapsuleResponse{Capsule: cp, Sealed: sealed})
}

// ListCapsules godoc
// @ID          listCapsules
// @Summary     Public capsule feed (paginated)
// @Description Shared capsules that have been unlocked, latest unlock date first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Capsules
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListCapsulesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /capsules [get]
func (h *Handlers) ListCapsules(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	if count, newest, err := h.capsules.FeedStats(ctx); err == nil {
		if notModified(c, weakETag("capsules", "public", count, newest)) {
			return
		}
	}

	items, total, err := h.capsules.ListPublicPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.MemoryCapsule{}
	}
	ok(c, http.StatusOK, ListCapsulesResponse{Capsules: items, Pagination: newPagination(page, pageSize, total)})
}
