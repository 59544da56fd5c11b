// Package services – LetterService
//
// LetterService publishes anonymous letters and serves the newest-first
// feed. Only the FeedMax most recent letters are reachable through the feed;
// older letters stay addressable by id.
//
// Letter submission supports idempotent retries: a repeated Idempotency-Key
// from the same actor returns the letter created by the first request.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/repo"
	"github.com/tbourn/unsent-letters/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// idempotencyScopeLetters scopes idempotency keys used on letter creation.
const idempotencyScopeLetters = "letters"

// LetterService implements letter publishing and the feed.
type LetterService struct {
	DB *gorm.DB

	MaxRunes       int           // <= 0 disables the length check
	FeedMax        int           // <= 0 disables the feed cap
	IdempotencyTTL time.Duration // <= 0 falls back to 24h
}

// CreateLetterInput is a letter submission.
type CreateLetterInput struct {
	ActorIP        string
	IdempotencyKey string
	Text           string
	Tag            string // empty means untagged
}

// Create validates and stores a letter. The returned bool is true when the
// letter was replayed from an earlier request with the same idempotency key.
func (s *LetterService) Create(ctx context.Context, in CreateLetterInput) (*domain.Letter, bool, error) {
	tr := otel.Tracer("services/LetterService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("letter.tag", in.Tag)),
	)
	defer span.End()

	text := norm.NFC.String(strings.TrimSpace(in.Text))
	if text == "" {
		return nil, false, ErrEmptyLetter
	}
	if s.MaxRunes > 0 && utf8.RuneCountInString(text) > s.MaxRunes {
		return nil, false, ErrLetterTooLong
	}
	var tag *string
	if t := strings.TrimSpace(in.Tag); t != "" {
		if !domain.ValidTag(t) {
			return nil, false, ErrInvalidTag
		}
		tag = &t
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if prev, ok := s.replay(ctx, in.ActorIP, key); ok {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return prev, true, nil
		}
	}

	var created *domain.Letter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := repo.CreateLetter(ctx, tx, text, tag)
		if err != nil {
			return err
		}
		created = l
		if key == "" {
			return nil
		}
		if err := repo.ReleaseExpiredIdempotency(ctx, tx, in.ActorIP, idempotencyScopeLetters, key, time.Now().UTC()); err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, in.ActorIP, idempotencyScopeLetters, key, l.ID, 201, s.ttl())
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won; serve its letter.
		if prev, ok := s.replay(ctx, in.ActorIP, key); ok {
			return prev, true, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.String("letter.id", created.ID))
	return created, false, nil
}

func (s *LetterService) replay(ctx context.Context, actorIP, key string) (*domain.Letter, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, actorIP, idempotencyScopeLetters, key, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	l, err := repo.GetLetter(ctx, s.DB, rec.ResourceID)
	if err != nil {
		return nil, false
	}
	return l, true
}

// HasReplay reports whether key already maps to a stored letter for actorIP.
func (s *LetterService) HasReplay(ctx context.Context, actorIP, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, actorIP, idempotencyScopeLetters, key, now)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *LetterService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// Get returns a letter by id or ErrLetterNotFound.
func (s *LetterService) Get(ctx context.Context, id string) (*domain.Letter, error) {
	l, err := repo.GetLetter(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLetterNotFound
	}
	return l, err
}

// ListPage returns one feed page, newest first, and the number of letters
// reachable through the feed (capped at FeedMax). An empty tag lists all.
func (s *LetterService) ListPage(ctx context.Context, tag string, page, pageSize int) ([]domain.Letter, int64, error) {
	tr := otel.Tracer("services/LetterService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("letter.tag", tag),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if tag != "" && !domain.ValidTag(tag) {
		return nil, 0, ErrInvalidTag
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.Offset(page, pageSize)

	total, err := repo.CountLetters(ctx, s.DB, tag)
	if err != nil {
		return nil, 0, err
	}
	total = s.capFeed(total)
	if int64(offset) >= total {
		return []domain.Letter{}, total, nil
	}
	limit := pageSize
	if rest := int(total) - offset; rest < limit {
		limit = rest
	}

	items, err := repo.ListLettersPage(ctx, s.DB, tag, offset, limit)
	return items, total, err
}

// FeedStats returns the reachable feed size and the newest letter time for
// tag, for use in ETags.
func (s *LetterService) FeedStats(ctx context.Context, tag string) (int64, *time.Time, error) {
	count, newest, err := repo.LettersStats(ctx, s.DB, tag)
	if err != nil {
		return 0, nil, err
	}
	return s.capFeed(count), newest, nil
}

func (s *LetterService) capFeed(n int64) int64 {
	if s.FeedMax > 0 && n > int64(s.FeedMax) {
		return int64(s.FeedMax)
	}
	return n
}
