// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the interaction-guard stores: the
// interaction log, the IP blocklist, and active reactions.
//
// Error semantics:
//   - Inserts that collide with a unique index return ErrDuplicate, whatever
//     the driver's native error looks like.
//   - Lookups of a missing row return ErrNotFound.
//   - Everything else is the raw gorm error.
//
// All functions accept a *gorm.DB so the guard can run them inside one
// transaction.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// CreateInteraction appends a log row for (ip, letterID, action). emoji must
// be nil for like and comment. A second row for the same triple fails with
// ErrDuplicate.
func CreateInteraction(ctx context.Context, db *gorm.DB, ip, letterID string, action domain.Action, emoji *string) (*domain.InteractionLog, error) {
	rec := &domain.InteractionLog{
		ID:        uuid.NewString(),
		IP:        ip,
		LetterID:  letterID,
		Action:    action,
		Emoji:     emoji,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// DeleteReactionLog removes the reaction log of ip on letterID if, and only
// if, it carries emoji. It reports whether a row was removed.
func DeleteReactionLog(ctx context.Context, db *gorm.DB, ip, letterID, emoji string) (bool, error) {
	res := db.WithContext(ctx).
		Where("ip = ? AND letter_id = ? AND action = ? AND emoji = ?", ip, letterID, domain.ActionReaction, emoji).
		Delete(&domain.InteractionLog{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindInteraction returns the log row for (ip, letterID, action) or ErrNotFound.
func FindInteraction(ctx context.Context, db *gorm.DB, ip, letterID string, action domain.Action) (*domain.InteractionLog, error) {
	var rec domain.InteractionLog
	err := db.WithContext(ctx).
		Where("ip = ? AND letter_id = ? AND action = ?", ip, letterID, action).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountInteractions returns how many actors performed action on letterID.
func CountInteractions(ctx context.Context, db *gorm.DB, letterID string, action domain.Action) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.InteractionLog{}).
		Where("letter_id = ? AND action = ?", letterID, action).
		Count(&n).Error
	return n, err
}

// ---- blocklist ----

// GetBlockedIP returns the blocklist row for ip, or ErrNotFound.
func GetBlockedIP(ctx context.Context, db *gorm.DB, ip string) (*domain.BlockedIP, error) {
	var b domain.BlockedIP
	if err := db.WithContext(ctx).Where("ip = ?", ip).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// BlockIP adds ip to the blocklist. Blocking an already blocked IP replaces
// its reason and keeps the original BlockedAt.
func BlockIP(ctx context.Context, db *gorm.DB, ip, reason string) (*domain.BlockedIP, error) {
	b := &domain.BlockedIP{IP: ip, Reason: reason, BlockedAt: time.Now().UTC()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason"}),
		}).
		Create(b).Error
	if err != nil {
		return nil, err
	}
	return GetBlockedIP(ctx, db, ip)
}

// ListBlockedIPs returns the blocklist, most recently blocked first.
func ListBlockedIPs(ctx context.Context, db *gorm.DB) ([]domain.BlockedIP, error) {
	var out []domain.BlockedIP
	err := db.WithContext(ctx).Order("blocked_at desc").Find(&out).Error
	return out, err
}

// ---- reactions ----

// AddReaction records an active reaction. A row that already exists for
// (letterID, emoji, ip) is left untouched and no error is returned.
func AddReaction(ctx context.Context, db *gorm.DB, letterID, emoji, ip string) error {
	r := &domain.Reaction{
		ID:        uuid.NewString(),
		LetterID:  letterID,
		Emoji:     emoji,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r).Error
	if err != nil && IsDuplicate(err) {
		return nil
	}
	return err
}

// RemoveReaction deletes the (letterID, emoji, ip) reaction if present.
func RemoveReaction(ctx context.Context, db *gorm.DB, letterID, emoji, ip string) error {
	return db.WithContext(ctx).
		Where("letter_id = ? AND emoji = ? AND ip = ?", letterID, emoji, ip).
		Delete(&domain.Reaction{}).Error
}

// CountReactions groups the active reactions on letterID by emoji.
func CountReactions(ctx context.Context, db *gorm.DB, letterID string) (map[string]int64, error) {
	var rows []struct {
		Emoji string
		N     int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Reaction{}).
		Select("emoji, COUNT(*) AS n").
		Where("letter_id = ?", letterID).
		Group("emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Emoji] = r.N
	}
	return out, nil
}
