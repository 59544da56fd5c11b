// Interaction guard HTTP handlers.
//
//   - POST    /interaction-guard   decide and record a like, comment or reaction
//   - OPTIONS /interaction-guard   browser preflight
//
// The guard speaks the small JSON dialect its web client already understands
// rather than the ErrorResponse envelope used by the letters API:
//
//	200 {"ok": true}                      admitted
//	200 {"ok": true, "undone": true}      reaction removed
//	400 {"error": "Invalid params"}
//	429 {"blocked": true, "reason": "..."}
//	429 {"reason": "You have already liked this letter."}
//	500 {"error": "..."}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// GuardCORSAllowHeaders lists the request headers the guard's web client sends.
const GuardCORSAllowHeaders = "authorization, x-client-info, apikey, content-type"

const (
	guardInvalidParams = "Invalid params"
	guardStorageFailed = "Failed to record interaction"
)

// InteractionRequest is the guard request body.
type InteractionRequest struct {
	LetterID string `json:"letterId" example:"9b2f7c1e-3d4a-4b8e-9f10-2a3b4c5d6e7f"`
	Action   string `json:"action" enums:"like,comment,reaction" example:"reaction"`
	// Emoji is required for reactions and ignored otherwise.
	Emoji string `json:"emoji,omitempty" example:"❤️"`
}

// InteractionResponse is returned when the interaction is admitted.
type InteractionResponse struct {
	OK     bool `json:"ok" example:"true"`
	Undone bool `json:"undone,omitempty" example:"false"`
}

// InteractionDenied is returned with 429.
type InteractionDenied struct {
	Blocked bool   `json:"blocked,omitempty"`
	Reason  string `json:"reason" example:"You have already liked this letter."`
}

// InteractionError is returned with 400 and 500.
type InteractionError struct {
	Error string `json:"error" example:"Invalid params"`
}

// GuardCORS sets the permissive CORS headers the guard answers with, on
// every response including errors.
func GuardCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", GuardCORSAllowHeaders)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Next()
	}
}

// InteractionGuard godoc
// @ID          interactionGuard
// @Summary     Like, comment on, or react to a letter
// @Description Anonymous actors are identified by X-Forwarded-For (first entry), then X-Real-IP.
// @Description Likes and comments are one per actor and letter. Repeating the active reaction emoji removes it.
// @Tags        Guard
// @Accept      json
// @Produce     json
//
// @Param       X-Forwarded-For  header  string  false "Client address chain"  example(203.0.113.7)
// @Param       body             body    handlers.InteractionRequest  true  "Interaction"
//
// @Success     200  {object}  handlers.InteractionResponse
// @Failure     400  {object}  handlers.InteractionError   "Invalid params"
// @Failure     429  {object}  handlers.InteractionDenied  "Blocked or already done"
// @Failure     500  {object}  handlers.InteractionError   "Storage failure"
// @Router      /interaction-guard [post]
func (h *Handlers) InteractionGuard(c *gin.Context) {
	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, InteractionError{Error: guardInvalidParams})
		return
	}

	d, err := h.guard.Check(c.Request.Context(), services.GuardRequest{
		IP:       middleware.ActorIP(c),
		LetterID: req.LetterID,
		Action:   req.Action,
		Emoji:    req.Emoji,
	})

	var blocked *services.BlockedError
	var done *services.AlreadyDoneError
	switch {
	case err == nil:
		ok(c, http.StatusOK, InteractionResponse{OK: true, Undone: d.Undone})
	case errors.Is(err, services.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, InteractionError{Error: guardInvalidParams})
	case errors.As(err, &blocked):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, InteractionDenied{Blocked: true, Reason: blocked.Reason})
	case errors.As(err, &done):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, InteractionDenied{Reason: done.Reason()})
	default:
		middleware.LoggerFrom(c).Error().Err(err).
			Str("letter_id", req.LetterID).
			Str("action", req.Action).
			Msg("interaction guard failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, InteractionError{Error: guardStorageFailed})
	}
}

// InteractionGuardPreflight answers browser preflight with 204 and no body.
//
// @ID          interactionGuardPreflight
// @Summary     CORS preflight for the interaction guard
// @Tags        Guard
// @Success     204  {string}  string  "No Content"
// @Router      /interaction-guard [options]
func (h *Handlers) InteractionGuardPreflight(c *gin.Context) {
	noContent(c)
}
