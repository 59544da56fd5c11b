// Engagement HTTP handler.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/services"
)

// GetEngagement godoc
// @ID          getEngagement
// @Summary     Like, comment and reaction counts for a letter
// @Tags        Letters
// @Produce     json
// @Param       id   path      string  true  "Letter ID"  format(uuid)
// @Success     200  {object}  domain.Engagement
// @Failure     404  {object}  handlers.ErrorResponse "Letter not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /letters/{id}/engagement [get]
func (h *Handlers) GetEngagement(c *gin.Context) {
	e, err := h.engagement.Summary(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		ok(c, http.StatusOK, e)
	case errors.Is(err, services.ErrLetterNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "letter not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeSummaryFailed, err.Error())
	}
}
