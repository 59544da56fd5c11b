package domain

import "time"

// MemoryCapsule is an anonymous note sealed until UnlockDate.
//
// Content and media are withheld from readers until the unlock date has
// passed. The first read after that flips IsUnlocked and stamps UnlockedAt;
// only public capsules that have been unlocked appear in the capsule feed.
type MemoryCapsule struct {
	ID                 string     `json:"id"                   gorm:"type:char(36);primaryKey"`
	Content            string     `json:"content,omitempty"    gorm:"type:text;not null"`
	ImageURL           *string    `json:"image_url,omitempty"  gorm:"type:varchar(2048)"`
	AudioURL           *string    `json:"audio_url,omitempty"  gorm:"type:varchar(2048)"`
	VideoURL           *string    `json:"video_url,omitempty"  gorm:"type:varchar(2048)"`
	UnlockDate         time.Time  `json:"unlock_date"          gorm:"not null;index:idx_capsules_unlock"`
	IsUnlocked         bool       `json:"is_unlocked"          gorm:"not null;default:false;index:idx_capsules_feed,priority:2"`
	UnlockedAt         *time.Time `json:"unlocked_at"`
	AllowPublicSharing bool       `json:"allow_public_sharing" gorm:"not null;default:false;index:idx_capsules_feed,priority:1"`
	// EmailForDelivery is kept for a future delivery job and never served.
	EmailForDelivery *string   `json:"-"          gorm:"type:varchar(320)"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for MemoryCapsule.
func (MemoryCapsule) TableName() string { return "memory_capsules" }

// Sealed reports whether the capsule is still locked at now.
func (c *MemoryCapsule) Sealed(now time.Time) bool {
	return !c.IsUnlocked && now.Before(c.UnlockDate)
}

// Withhold clears content and media in place.
func (c *MemoryCapsule) Withhold() {
	c.Content = ""
	c.ImageURL, c.AudioURL, c.VideoURL = nil, nil, nil
}
