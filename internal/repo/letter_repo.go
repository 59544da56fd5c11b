// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for letters and
// their comments.
//
// Functions follow the "thin repository" approach: no business logic, only
// persistence and query composition. Missing rows surface as ErrNotFound;
// other failures are returned as raw gorm errors.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
)

// CreateLetter inserts a new Letter with a random UUID and a UTC timestamp.
func CreateLetter(ctx context.Context, db *gorm.DB, text string, tag *string) (*domain.Letter, error) {
	l := &domain.Letter{
		ID:        uuid.NewString(),
		Text:      text,
		Tag:       tag,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// GetLetter fetches a letter by id, or ErrNotFound.
func GetLetter(ctx context.Context, db *gorm.DB, id string) (*domain.Letter, error) {
	var l domain.Letter
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// LetterExists reports whether a letter with id is stored.
func LetterExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Letter{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func lettersScope(db *gorm.DB, tag string) *gorm.DB {
	if tag != "" {
		return db.Where("tag = ?", tag)
	}
	return db
}

// CountLetters returns the number of letters, optionally restricted to tag.
func CountLetters(ctx context.Context, db *gorm.DB, tag string) (int64, error) {
	var total int64
	err := lettersScope(db.WithContext(ctx).Model(&domain.Letter{}), tag).Count(&total).Error
	return total, err
}

// ListLettersPage returns letters newest first. An empty tag lists all tags.
// The caller computes offset and limit.
func ListLettersPage(ctx context.Context, db *gorm.DB, tag string, offset, limit int) ([]domain.Letter, error) {
	var out []domain.Letter
	err := lettersScope(db.WithContext(ctx), tag).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateComment inserts a comment by ip on letterID. A second comment from the
// same ip fails with ErrDuplicate.
func CreateComment(ctx context.Context, db *gorm.DB, letterID, ip, text string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:        uuid.NewString(),
		LetterID:  letterID,
		IP:        ip,
		Comment:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit("Letter").Create(c).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// CountComments returns the number of comments on letterID.
func CountComments(ctx context.Context, db *gorm.DB, letterID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("letter_id = ?", letterID).
		Count(&total).Error
	return total, err
}

// ListCommentsPage returns comments on letterID oldest first.
func ListCommentsPage(ctx context.Context, db *gorm.DB, letterID string, offset, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("letter_id = ?", letterID).
		Order("created_at asc").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
