// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the memory capsule store.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// CreateCapsule inserts c, assigning its ID and CreatedAt.
func CreateCapsule(ctx context.Context, db *gorm.DB, c *domain.MemoryCapsule) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.UnlockDate = c.UnlockDate.UTC()
	c.IsUnlocked = false
	c.UnlockedAt = nil
	return db.WithContext(ctx).Create(c).Error
}

// GetCapsule returns the capsule with id or ErrNotFound.
func GetCapsule(ctx context.Context, db *gorm.DB, id string) (*domain.MemoryCapsule, error) {
	var c domain.MemoryCapsule
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UnlockCapsule marks id unlocked at now if its unlock date has passed and it
// is still locked. It reports whether this call performed the transition;
// concurrent readers race on the conditional update and exactly one wins.
func UnlockCapsule(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	now = now.UTC()
	res := db.WithContext(ctx).
		Model(&domain.MemoryCapsule{}).
		Where("id = ? AND is_unlocked = ? AND unlock_date <= ?", id, false, now).
		Updates(map[string]any{"is_unlocked": true, "unlocked_at": now})
	return res.RowsAffected > 0, res.Error
}

// UnlockDueCapsules unlocks every capsule whose unlock date is at or before
// now and returns how many were flipped.
func UnlockDueCapsules(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	now = now.UTC()
	res := db.WithContext(ctx).
		Model(&domain.MemoryCapsule{}).
		Where("is_unlocked = ? AND unlock_date <= ?", false, now).
		Updates(map[string]any{"is_unlocked": true, "unlocked_at": now})
	return res.RowsAffected, res.Error
}

func publicCapsules(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.MemoryCapsule{}).
		Where("allow_public_sharing = ? AND is_unlocked = ?", true, true)
}

// CountPublicCapsules returns the number of shared, unlocked capsules.
func CountPublicCapsules(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := publicCapsules(db.WithContext(ctx)).Count(&n).Error
	return n, err
}

// ListPublicCapsulesPage returns shared, unlocked capsules, latest unlock
// date first.
func ListPublicCapsulesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.MemoryCapsule, error) {
	var out []domain.MemoryCapsule
	err := publicCapsules(db.WithContext(ctx)).
		Order("unlock_date desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PublicCapsulesStats returns the count and newest unlocked_at of the public
// capsule feed, for ETags.
func PublicCapsulesStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	var n int64
	q := publicCapsules(db.WithContext(ctx))
	if err := q.Session(&gorm.Session{}).Count(&n).Error; err != nil || n == 0 {
		return 0, nil, err
	}
	var row struct {
		UnlockedAt *time.Time
	}
	err := q.Session(&gorm.Session{}).
		Select("unlocked_at").
		Order("unlocked_at DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return n, row.UnlockedAt, nil
}
