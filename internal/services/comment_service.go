// Package services – CommentService
//
// CommentService stores and lists the short public replies attached to a
// letter. Posting a comment is an interaction like any other: inside one
// transaction the actor IP is checked against the blocklist, the comment
// interaction is admitted (or found already admitted by a prior guard call),
// and the comment row is written. An actor gets one comment per letter.
package services

import (
	"context"
	"errors"
	"fmt"
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
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CommentService implements comment use-cases.
type CommentService struct {
	DB       *gorm.DB
	Cache    EngagementCache // optional
	MaxRunes int             // <= 0 disables the length check
}

// Add validates text and stores it as the comment of actorIP on letterID.
//
// A comment interaction already admitted through the guard is consumed by the
// first comment; a second comment from the same IP is *AlreadyDoneError.
//
// Errors: ErrEmptyComment, ErrCommentTooLong, ErrInvalidRequest (bad actor
// address), ErrLetterNotFound, *BlockedError, *AlreadyDoneError, or a wrapped
// storage error.
func (s *CommentService) Add(ctx context.Context, actorIP, letterID, text string) (*domain.Comment, error) {
	ctx, span := otel.Tracer("services/CommentService").Start(ctx, "Add",
		trace.WithAttributes(attribute.String("letter.id", letterID)),
	)
	defer span.End()

	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyComment
	}
	if s.MaxRunes > 0 && utf8.RuneCountInString(text) > s.MaxRunes {
		return nil, ErrCommentTooLong
	}
	ip, err := normalizeActorIP(actorIP)
	if err != nil {
		return nil, err
	}

	var out *domain.Comment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := repo.GetBlockedIP(ctx, tx, ip)
		switch {
		case err == nil:
			return &BlockedError{IP: b.IP, Reason: b.Reason}
		case !errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("blocklist lookup: %w", err)
		}

		ok, err := repo.LetterExists(ctx, tx, letterID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLetterNotFound
		}

		_, err = repo.FindInteraction(ctx, tx, ip, letterID, domain.ActionComment)
		switch {
		case isNotFound(err):
			if _, err := repo.CreateInteraction(ctx, tx, ip, letterID, domain.ActionComment, nil); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return &AlreadyDoneError{Action: domain.ActionComment}
				}
				return fmt.Errorf("record interaction: %w", err)
			}
		case err != nil:
			return fmt.Errorf("interaction lookup: %w", err)
		}

		c, err := repo.CreateComment(ctx, tx, letterID, ip, text)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return &AlreadyDoneError{Action: domain.ActionComment}
			}
			return err
		}
		out = c
		return nil
	})

	action := string(domain.ActionComment)
	switch {
	case err == nil:
		recordDecision(action, outcomeAllowed)
	case errors.Is(err, ErrBlocked):
		recordDecision(action, outcomeBlocked)
	case errors.Is(err, ErrAlreadyDone):
		recordDecision(action, outcomeAlreadyDone)
	case errors.Is(err, ErrLetterNotFound):
	default:
		recordDecision(action, outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failure")
	}
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, letterID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("letter_id", letterID).Msg("engagement cache invalidate failed")
		}
	}
	return out, nil
}

// ListPage returns comments on letterID, oldest first, with the total count.
func (s *CommentService) ListPage(ctx context.Context, letterID string, page, pageSize int) ([]domain.Comment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.Offset(page, pageSize)

	ok, err := repo.LetterExists(ctx, s.DB, letterID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrLetterNotFound
	}

	total, err := repo.CountComments(ctx, s.DB, letterID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Comment{}, 0, nil
	}
	items, err := repo.ListCommentsPage(ctx, s.DB, letterID, offset, pageSize)
	return items, total, err
}

// Stats returns the comment count and newest comment time, for ETags.
func (s *CommentService) Stats(ctx context.Context, letterID string) (int64, *time.Time, error) {
	return repo.CommentsStats(ctx, s.DB, letterID)
}

// isNotFound treats repo-level not found sentinels as "not found".
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
