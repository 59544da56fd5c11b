// Package services defines the business logic for the interaction guard,
// letters, comments, engagement summaries and memory capsules. This file
// centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// Guard outcomes.
var (
	// ErrInvalidRequest indicates missing or malformed guard input. Nothing
	// was written.
	ErrInvalidRequest = errors.New("invalid params")

	// ErrBlocked matches any *BlockedError via errors.Is.
	ErrBlocked = errors.New("ip is blocked")

	// ErrAlreadyDone matches any *AlreadyDoneError via errors.Is.
	ErrAlreadyDone = errors.New("interaction already recorded")
)

// Letter and comment errors.
var (
	ErrLetterNotFound = errors.New("letter not found")
	ErrEmptyLetter    = errors.New("letter text is empty")
	ErrLetterTooLong  = errors.New("letter text too long")
	ErrInvalidTag     = errors.New("unknown letter tag")
	ErrEmptyComment   = errors.New("comment is empty")
	ErrCommentTooLong = errors.New("comment too long")
)

// Capsule errors.
var (
	ErrCapsuleNotFound     = errors.New("capsule not found")
	ErrEmptyCapsule        = errors.New("capsule content is empty")
	ErrCapsuleTooLong      = errors.New("capsule content too long")
	ErrUnlockDateNotFuture = errors.New("unlock date must be in the future")
	ErrInvalidMediaURL     = errors.New("media url must be an absolute http(s) url")
)

// BlockedError is returned when the actor's IP is on the blocklist.
type BlockedError struct {
	IP     string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("ip %s is blocked: %s", e.IP, e.Reason)
}

// Is makes errors.Is(err, ErrBlocked) succeed.
func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// AlreadyDoneError is returned when the actor already performed Action on the
// letter (for reactions: already reacted with a different emoji).
type AlreadyDoneError struct {
	Action domain.Action
}

func (e *AlreadyDoneError) Error() string { return e.Reason() }

// Is makes errors.Is(err, ErrAlreadyDone) succeed.
func (e *AlreadyDoneError) Is(target error) bool { return target == ErrAlreadyDone }

// Reason is the user-facing denial message.
func (e *AlreadyDoneError) Reason() string {
	switch e.Action {
	case domain.ActionLike:
		return "You have already liked this letter."
	case domain.ActionComment:
		return "You have already commented on this letter."
	case domain.ActionReaction:
		return "You have already reacted to this letter."
	}
	return "You have already interacted with this letter."
}
