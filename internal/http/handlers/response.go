// Package handlers provides HTTP handler implementations for the public API.
//
// This file holds the response helpers of the letters API. Every error is an
// ErrorResponse with a stable code; fail() logs 5xx with the request-scoped
// logger before writing it.
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "letter not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// ErrorResponse is the error envelope of the letters API.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"letter not found"`
}

// DeniedResponse is the 429 body of an interaction refused by the guard rules
// on a letters API route. Reason is the text the web client shows.
type DeniedResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"already_done"`
	Message   string `json:"message" example:"interaction denied"`
	Blocked   bool   `json:"blocked,omitempty" example:"false"`
	Reason    string `json:"reason" example:"You have already commented on this letter."`
}

// deny aborts with 429 and a DeniedResponse for *BlockedError and
// *AlreadyDoneError. It reports false for any other error.
func deny(c *gin.Context, err error) bool {
	resp := DeniedResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Message:   "interaction denied",
	}
	var blocked *services.BlockedError
	var done *services.AlreadyDoneError
	switch {
	case errors.As(err, &blocked):
		resp.Code, resp.Blocked, resp.Reason = ErrCodeBlocked, true, blocked.Reason
	case errors.As(err, &done):
		resp.Code, resp.Reason = ErrCodeAlreadyDone, done.Reason()
	default:
		return false
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
	return true
}

// fail aborts with an ErrorResponse. Statuses >= 500 are logged.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes 204 with an empty body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
