// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate input, call application
// services through the narrow interfaces below, and translate results into
// HTTP responses (including conditional and idempotent-replay responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/services"
	"github.com/tbourn/unsent-letters/internal/utils"
)

//
// Service contracts (context-aware)
//

// GuardService decides and records anonymous interactions.
type GuardService interface {
	Check(ctx context.Context, req services.GuardRequest) (services.Decision, error)
}

// LetterService publishes letters and serves the feed.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type LetterService interface {
	// Create stores a letter; the bool reports an idempotent replay.
	Create(ctx context.Context, in services.CreateLetterInput) (*domain.Letter, bool, error)
	Get(ctx context.Context, id string) (*domain.Letter, error)
	// ListPage returns a feed page (newest first) and the reachable total.
	ListPage(ctx context.Context, tag string, page, pageSize int) ([]domain.Letter, int64, error)
	// FeedStats returns (count, newest) for ETag computation.
	FeedStats(ctx context.Context, tag string) (int64, *time.Time, error)
}

// CommentService stores and lists letter comments.
type CommentService interface {
	// Add posts the comment of actorIP, subject to the blocklist and the
	// one-comment-per-actor rule.
	Add(ctx context.Context, actorIP, letterID, text string) (*domain.Comment, error)
	ListPage(ctx context.Context, letterID string, page, pageSize int) ([]domain.Comment, int64, error)
	Stats(ctx context.Context, letterID string) (int64, *time.Time, error)
}

// EngagementService tallies likes, comments and reactions.
type EngagementService interface {
	Summary(ctx context.Context, letterID string) (*domain.Engagement, error)
}

// CapsuleService seals, opens and lists memory capsules.
type CapsuleService interface {
	Create(ctx context.Context, in services.CreateCapsuleInput) (*domain.MemoryCapsule, error)
	// Open reports whether the capsule is still sealed; sealed capsules come
	// back with content and media cleared.
	Open(ctx context.Context, id string) (*domain.MemoryCapsule, bool, error)
	ListPublicPage(ctx context.Context, page, pageSize int) ([]domain.MemoryCapsule, int64, error)
	FeedStats(ctx context.Context) (int64, *time.Time, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints.
type Handlers struct {
	guard      GuardService
	letters    LetterService
	comments   CommentService
	engagement EngagementService
	capsules   CapsuleService
}

// New constructs a Handlers bound to the given services.
func New(guard GuardService, letters LetterService, comments CommentService, engagement EngagementService, capsules CapsuleService) *Handlers {
	return &Handlers{guard: guard, letters: letters, comments: comments, engagement: engagement, capsules: capsules}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination reads page and page_size (default 20, max 100).
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"), 20, 100)
}

// weakETag renders W/"<kind>:<scope>:<count>:<unix newest>".
func weakETag(kind, scope string, count int64, newest *time.Time) string {
	var ts int64
	if newest != nil {
		ts = newest.Unix()
	}
	return fmt.Sprintf(`W/"%s:%s:%d:%d"`, kind, scope, count, ts)
}

// notModified sets ETag and, when If-None-Match matches it, writes 304.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
