// Package services – GuardService
//
// GuardService decides whether an anonymous actor (identified only by IP) may
// like, comment on, or react to a letter. Decisions are made inside a single
// database transaction:
//
//  1. A blocklisted IP is denied outright and nothing is written.
//  2. A reaction with the emoji the actor already holds is undone: the log row
//     and the reaction row are deleted.
//  3. Otherwise a log row is inserted. The unique (ip, letter_id, action)
//     index rejects a second like, a second comment, or a reaction with a
//     different emoji, and that rejection becomes *AlreadyDoneError. The
//     conflict surfaces the same way whether the earlier row was committed
//     long ago or by a concurrent request a moment earlier.
//  4. Reactions also insert the reaction row, ignoring a conflict.
//
// Storage failures roll the transaction back and are returned wrapped; the
// service never retries.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLetterIDLen = 64
	maxEmojiRunes  = 16
	maxIPLen       = 64

	variationSelector16 = "\ufe0f"
)

// GuardRequest is one interaction attempt.
type GuardRequest struct {
	IP       string
	LetterID string
	Action   string
	Emoji    string
}

// Decision is the result of an admitted request. Undone is true when the
// request removed an existing reaction instead of adding one.
type Decision struct {
	Undone bool
}

// GuardService implements the interaction guard.
type GuardService struct {
	DB *gorm.DB

	// Cache, when set, has the letter's engagement entry dropped after every
	// admitted or undone interaction.
	Cache EngagementCache

	palette map[string]string // canonical form -> stored form
}

// NewGuardService builds a GuardService. An empty allowedEmojis accepts any
// non-empty emoji string up to a small length cap.
func NewGuardService(db *gorm.DB, cache EngagementCache, allowedEmojis []string) *GuardService {
	s := &GuardService{DB: db, Cache: cache}
	if len(allowedEmojis) > 0 {
		s.palette = make(map[string]string, len(allowedEmojis))
		for _, e := range allowedEmojis {
			e = norm.NFC.String(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			s.palette[canonicalEmoji(e)] = e
		}
	}
	return s
}

// canonicalEmoji drops emoji presentation selectors so that "❤" and "❤️"
// compare equal.
func canonicalEmoji(e string) string {
	return strings.ReplaceAll(e, variationSelector16, "")
}

// Check evaluates req and applies its side effects.
//
// Errors:
//   - ErrInvalidRequest for missing/invalid letter id, action, or emoji.
//   - *BlockedError (errors.Is ErrBlocked) when the IP is blocklisted.
//   - *AlreadyDoneError (errors.Is ErrAlreadyDone) for a repeated like or
//     comment, or a reaction while a different emoji is active.
//   - any other error is a storage failure; no partial state is kept.
func (s *GuardService) Check(ctx context.Context, req GuardRequest) (Decision, error) {
	tr := otel.Tracer("services/GuardService")
	ctx, span := tr.Start(ctx, "Check",
		trace.WithAttributes(
			attribute.String("letter.id", req.LetterID),
			attribute.String("guard.action", req.Action),
		),
	)
	defer span.End()

	in, err := s.normalize(req)
	if err != nil {
		recordDecision(outcomeInvalid, outcomeInvalid)
		span.SetAttributes(attribute.String("guard.outcome", outcomeInvalid))
		return Decision{}, err
	}

	var dec Decision
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Blocklist.
		b, err := repo.GetBlockedIP(ctx, tx, in.IP)
		switch {
		case err == nil:
			return &BlockedError{IP: b.IP, Reason: b.Reason}
		case !errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("blocklist lookup: %w", err)
		}

		// 2) Same-emoji reaction toggles off.
		if in.Action == domain.ActionReaction {
			removed, err := repo.DeleteReactionLog(ctx, tx, in.IP, in.LetterID, in.Emoji)
			if err != nil {
				return fmt.Errorf("undo reaction log: %w", err)
			}
			if removed {
				if err := repo.RemoveReaction(ctx, tx, in.LetterID, in.Emoji, in.IP); err != nil {
					return fmt.Errorf("undo reaction: %w", err)
				}
				dec.Undone = true
				return nil
			}
		}

		// 3) Admission; the unique index rejects repeats.
		var emoji *string
		if in.Action == domain.ActionReaction {
			emoji = &in.Emoji
		}
		if _, err := repo.CreateInteraction(ctx, tx, in.IP, in.LetterID, in.Action, emoji); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return &AlreadyDoneError{Action: in.Action}
			}
			return fmt.Errorf("record interaction: %w", err)
		}

		// 4) Reaction row; conflicts are tolerated by the repo.
		if in.Action == domain.ActionReaction {
			if err := repo.AddReaction(ctx, tx, in.LetterID, in.Emoji, in.IP); err != nil {
				return fmt.Errorf("record reaction: %w", err)
			}
		}
		return nil
	})

	action := string(in.Action)
	switch {
	case err == nil && dec.Undone:
		recordDecision(action, outcomeUndone)
	case err == nil:
		recordDecision(action, outcomeAllowed)
	case errors.Is(err, ErrBlocked):
		recordDecision(action, outcomeBlocked)
	case errors.Is(err, ErrAlreadyDone):
		recordDecision(action, outcomeAlreadyDone)
	default:
		recordDecision(action, outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failure")
	}
	if err != nil {
		return Decision{}, err
	}

	span.SetAttributes(attribute.Bool("guard.undone", dec.Undone))
	s.invalidate(ctx, in.LetterID)
	return dec, nil
}

func (s *GuardService) invalidate(ctx context.Context, letterID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, letterID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("letter_id", letterID).Msg("engagement cache invalidate failed")
	}
}

type guardInput struct {
	IP       string
	LetterID string
	Action   domain.Action
	Emoji    string
}

func (s *GuardService) normalize(req GuardRequest) (guardInput, error) {
	ip, err := normalizeActorIP(req.IP)
	if err != nil {
		return guardInput{}, err
	}
	in := guardInput{
		IP:       ip,
		LetterID: strings.TrimSpace(req.LetterID),
		Action:   domain.Action(strings.TrimSpace(req.Action)),
	}
	if in.LetterID == "" || len(in.LetterID) > maxLetterIDLen {
		return in, ErrInvalidRequest
	}
	if !in.Action.Valid() {
		return in, ErrInvalidRequest
	}
	if in.Action != domain.ActionReaction {
		return in, nil
	}

	emoji := norm.NFC.String(strings.TrimSpace(req.Emoji))
	if emoji == "" || utf8.RuneCountInString(emoji) > maxEmojiRunes {
		return in, ErrInvalidRequest
	}
	if s.palette != nil {
		stored, ok := s.palette[canonicalEmoji(emoji)]
		if !ok {
			return in, ErrInvalidRequest
		}
		emoji = stored
	}
	in.Emoji = emoji
	return in, nil
}

// normalizeActorIP trims ip and maps a blank address to domain.UnknownActor.
// Addresses longer than the stored column are rejected, not truncated, so two
// distinct actors never collapse into one identity.
func normalizeActorIP(ip string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return domain.UnknownActor, nil
	}
	if len(ip) > maxIPLen {
		return "", ErrInvalidRequest
	}
	return ip, nil
}
