// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// LettersStats returns the number of letters (optionally for one tag) and the
// newest CreatedAt among them. When there are no letters, the count is 0 and
// newest is nil.
func LettersStats(ctx context.Context, db *gorm.DB, tag string) (count int64, newest *time.Time, err error) {
	q := lettersScope(db.WithContext(ctx).Model(&domain.Letter{}), tag)
	return newestOf(q, &count)
}

// CommentsStats returns the number of comments on letterID and the newest
// CreatedAt among them.
func CommentsStats(ctx context.Context, db *gorm.DB, letterID string) (count int64, newest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Comment{}).Where("letter_id = ?", letterID)
	return newestOf(q, &count)
}

func newestOf(q *gorm.DB, count *int64) (int64, *time.Time, error) {
	if err := q.Session(&gorm.Session{}).Count(count).Error; err != nil {
		return 0, nil, err
	}
	if *count == 0 {
		return 0, nil, nil
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err := q.Session(&gorm.Session{}).Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return *count, &row.CreatedAt, nil
}
