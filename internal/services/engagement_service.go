// Package services – EngagementService
//
// EngagementService tallies likes, comments, and active reactions for a
// letter. Results are served from the optional cache when present; cache
// errors are logged and the database is used instead.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EngagementService computes engagement summaries.
type EngagementService struct {
	DB    *gorm.DB
	Cache EngagementCache // optional
}

// Summary returns the engagement tally for letterID or ErrLetterNotFound.
//
// The cache is filled cache-aside with no version check. An admission that
// commits and invalidates between this method's reads and its Set leaves a
// stale tally cached until the next admission on the letter or the cache TTL,
// whichever comes first. Keep the TTL short (ENGAGEMENT_CACHE_TTL, 30s
// default).
func (s *EngagementService) Summary(ctx context.Context, letterID string) (*domain.Engagement, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "Summary",
		trace.WithAttributes(attribute.String("letter.id", letterID)),
	)
	defer span.End()

	lg := zerolog.Ctx(ctx)
	if s.Cache != nil {
		e, hit, err := s.Cache.Get(ctx, letterID)
		if err != nil {
			lg.Warn().Err(err).Str("letter_id", letterID).Msg("engagement cache get failed")
		} else if hit {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return e, nil
		}
	}

	if _, err := repo.GetLetter(ctx, s.DB, letterID); err != nil {
		if isNotFound(err) {
			return nil, ErrLetterNotFound
		}
		return nil, err
	}

	likes, err := repo.CountInteractions(ctx, s.DB, letterID, domain.ActionLike)
	if err != nil {
		return nil, err
	}
	comments, err := repo.CountComments(ctx, s.DB, letterID)
	if err != nil {
		return nil, err
	}
	reactions, err := repo.CountReactions(ctx, s.DB, letterID)
	if err != nil {
		return nil, err
	}
	e := &domain.Engagement{
		LetterID:  letterID,
		Likes:     likes,
		Comments:  comments,
		Reactions: reactions,
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, e); err != nil {
			lg.Warn().Err(err).Str("letter_id", letterID).Msg("engagement cache set failed")
		}
	}
	return e, nil
}
