// Package services – CapsuleService
//
// CapsuleService seals anonymous memory capsules until a future unlock date.
// Until then a capsule can be fetched by id but its content and media are
// withheld. The first fetch at or after the unlock date reveals it and stamps
// unlocked_at; the janitor also unlocks due capsules so that the public feed
// does not depend on someone opening them.
package services

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/repo"
	"github.com/tbourn/unsent-letters/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxMediaURLLen = 2048

// CapsuleService implements memory capsule use-cases.
type CapsuleService struct {
	DB *gorm.DB

	MaxRunes int           // <= 0 disables the length check
	MinLead  time.Duration // how far ahead the unlock date must be
	FeedMax  int           // <= 0 disables the feed cap

	// Now overrides the clock in tests.
	Now func() time.Time
}

// CreateCapsuleInput is a capsule submission. Media fields are URLs of
// already uploaded files; empty means none.
type CreateCapsuleInput struct {
	Content            string
	UnlockDate         time.Time
	ImageURL           string
	AudioURL           string
	VideoURL           string
	EmailForDelivery   string
	AllowPublicSharing bool
}

func (s *CapsuleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates and seals a capsule.
//
// Errors: ErrEmptyCapsule, ErrCapsuleTooLong, ErrUnlockDateNotFuture,
// ErrInvalidMediaURL, or a storage error.
func (s *CapsuleService) Create(ctx context.Context, in CreateCapsuleInput) (*domain.MemoryCapsule, error) {
	ctx, span := otel.Tracer("services/CapsuleService").Start(ctx, "Create")
	defer span.End()

	content := norm.NFC.String(strings.TrimSpace(in.Content))
	if content == "" {
		return nil, ErrEmptyCapsule
	}
	if s.MaxRunes > 0 && utf8.RuneCountInString(content) > s.MaxRunes {
		return nil, ErrCapsuleTooLong
	}
	if in.UnlockDate.IsZero() || !in.UnlockDate.After(s.now().Add(s.MinLead)) {
		return nil, ErrUnlockDateNotFuture
	}

	c := &domain.MemoryCapsule{
		Content:            content,
		UnlockDate:         in.UnlockDate,
		AllowPublicSharing: in.AllowPublicSharing,
		EmailForDelivery:   optional(in.EmailForDelivery),
	}
	for _, m := range []struct {
		raw string
		dst **string
	}{
		{in.ImageURL, &c.ImageURL},
		{in.AudioURL, &c.AudioURL},
		{in.VideoURL, &c.VideoURL},
	} {
		u, err := mediaURL(m.raw)
		if err != nil {
			return nil, err
		}
		*m.dst = u
	}

	if err := repo.CreateCapsule(ctx, s.DB, c); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("capsule.id", c.ID))
	return c, nil
}

// mediaURL accepts an absolute http(s) URL or an empty string.
func mediaURL(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) > maxMediaURLLen {
		return nil, ErrInvalidMediaURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidMediaURL
	}
	return &raw, nil
}

func optional(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

// Open returns the capsule with id. While sealed, content and media are
// cleared and the bool is true. The first Open at or after the unlock date
// reveals the capsule.
func (s *CapsuleService) Open(ctx context.Context, id string) (*domain.MemoryCapsule, bool, error) {
	ctx, span := otel.Tracer("services/CapsuleService").Start(ctx, "Open",
		trace.WithAttributes(attribute.String("capsule.id", id)),
	)
	defer span.End()

	c, err := repo.GetCapsule(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, false, ErrCapsuleNotFound
		}
		return nil, false, err
	}

	now := s.now()
	if c.Sealed(now) {
		c.Withhold()
		span.SetAttributes(attribute.Bool("capsule.sealed", true))
		return c, true, nil
	}
	if c.IsUnlocked {
		return c, false, nil
	}

	won, err := repo.UnlockCapsule(ctx, s.DB, id, now)
	if err != nil {
		return nil, false, err
	}
	if won {
		c.IsUnlocked, c.UnlockedAt = true, &now
		zerolog.Ctx(ctx).Info().Str("capsule_id", id).Msg("capsule unlocked")
		return c, false, nil
	}
	// Another reader or the janitor unlocked it first; serve their stamp.
	if c, err = repo.GetCapsule(ctx, s.DB, id); err != nil {
		return nil, false, err
	}
	return c, false, nil
}

// ListPublicPage returns shared, unlocked capsules, latest unlock date first,
// and the number reachable through the feed (capped at FeedMax).
func (s *CapsuleService) ListPublicPage(ctx context.Context, page, pageSize int) ([]domain.MemoryCapsule, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.Offset(page, pageSize)

	total, err := repo.CountPublicCapsules(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	total = s.capFeed(total)
	if int64(offset) >= total {
		return []domain.MemoryCapsule{}, total, nil
	}
	limit := pageSize
	if rest := int(total) - offset; rest < limit {
		limit = rest
	}
	items, err := repo.ListPublicCapsulesPage(ctx, s.DB, offset, limit)
	return items, total, err
}

// FeedStats returns the reachable feed size and newest unlock time, for ETags.
func (s *CapsuleService) FeedStats(ctx context.Context) (int64, *time.Time, error) {
	n, newest, err := repo.PublicCapsulesStats(ctx, s.DB)
	if err != nil {
		return 0, nil, err
	}
	return s.capFeed(n), newest, nil
}

// UnlockDue reveals every capsule whose unlock date has passed.
func (s *CapsuleService) UnlockDue(ctx context.Context) (int64, error) {
	n, err := repo.UnlockDueCapsules(ctx, s.DB, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Int64("unlocked", n).Msg("due capsules unlocked")
	}
	return n, nil
}

func (s *CapsuleService) capFeed(n int64) int64 {
	if s.FeedMax > 0 && n > int64(s.FeedMax) {
		return int64(s.FeedMax)
	}
	return n
}
