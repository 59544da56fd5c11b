package services

import (
	"context"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// EngagementCache stores per-letter engagement summaries. Implementations
// live in internal/cache. A miss is (nil, false, nil).
type EngagementCache interface {
	Get(ctx context.Context, letterID string) (*domain.Engagement, bool, error)
	Set(ctx context.Context, e *domain.Engagement) error
	Invalidate(ctx context.Context, letterID string) error
}
