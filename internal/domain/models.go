// Package domain defines the persistence models for letters, comments, and the
// anonymous interaction guard (interaction logs, blocked IPs, reactions).
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"time"
)

// UnknownActor is the actor identity of requests that carry no address.
const UnknownActor = "unknown"

// Action is an interaction an anonymous actor can take on a letter.
type Action string

const (
	ActionLike     Action = "like"
	ActionComment  Action = "comment"
	ActionReaction Action = "reaction"
)

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionComment, ActionReaction:
		return true
	}
	return false
}

// Tags a letter may carry.
var Tags = []string{"Love", "Regret", "Goodbye", "Gratitude", "Confession", "Rage", "Closure"}

// ValidTag reports whether tag is one of Tags (case-sensitive).
func ValidTag(tag string) bool {
	for _, t := range Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Letter is an anonymous post. Letters have no owner.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Text: letter body, trimmed and NFC-normalized.
//   - Tag: optional emotional tag (see Tags).
//   - CreatedAt: insertion time, drives feed ordering (indexed).
type Letter struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Tag       *string   `json:"tag"        gorm:"type:varchar(16);index:idx_letters_tag"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_letters_created"`
}

// TableName returns the database table name for Letter.
func (Letter) TableName() string { return "letters" }

// Comment is a short public reply to a letter. Each actor IP may comment on
// a letter once; IP is never serialized.
type Comment struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	LetterID  string    `json:"letter_id"  gorm:"type:char(36);not null;index:idx_letter_comments,priority:1;uniqueIndex:ux_comment_actor,priority:1"`
	IP        string    `json:"-"          gorm:"type:varchar(64);not null;default:'';uniqueIndex:ux_comment_actor,priority:2"`
	Comment   string    `json:"comment"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_letter_comments,priority:2"`

	// Letter is the parent letter. Comments are cascade-deleted with it.
	Letter Letter `json:"-" gorm:"foreignKey:LetterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "letter_comments" }

// InteractionLog records one admitted interaction attempt.
//
// At most one row exists per (ip, letter_id, action): like and comment rows
// carry no emoji, and an actor holds at most one reaction per letter whatever
// the emoji. The unique index is what makes admission atomic; a concurrent
// duplicate insert fails instead of producing a second row.
//
// Rows are never updated. A reaction row is deleted when the actor undoes it.
type InteractionLog struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	IP        string    `json:"ip"         gorm:"type:varchar(64);not null;uniqueIndex:ux_interaction_actor,priority:1"`
	LetterID  string    `json:"letter_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_interaction_actor,priority:2;index:idx_interaction_letter"`
	Action    Action    `json:"action"     gorm:"type:varchar(16);not null;uniqueIndex:ux_interaction_actor,priority:3"`
	Emoji     *string   `json:"emoji,omitempty" gorm:"type:varchar(32)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for InteractionLog.
func (InteractionLog) TableName() string { return "anon_interaction_logs" }

// BlockedIP denies every interaction from IP. There is no unblock path.
type BlockedIP struct {
	IP        string    `json:"ip"         gorm:"type:varchar(64);primaryKey"`
	Reason    string    `json:"reason"     gorm:"type:varchar(500);not null;default:''"`
	BlockedAt time.Time `json:"blocked_at" gorm:"not null"`
}

// TableName returns the database table name for BlockedIP.
func (BlockedIP) TableName() string { return "blocked_ips" }

// Reaction is an active emoji reaction. Unique per (letter_id, emoji, ip).
type Reaction struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	LetterID  string    `json:"letter_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_reaction_letter_emoji_ip,priority:1"`
	Emoji     string    `json:"emoji"      gorm:"type:varchar(32);not null;uniqueIndex:ux_reaction_letter_emoji_ip,priority:2"`
	IP        string    `json:"ip"         gorm:"type:varchar(64);not null;uniqueIndex:ux_reaction_letter_emoji_ip,priority:3"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Reaction.
func (Reaction) TableName() string { return "letter_reactions" }

// Engagement is the public tally for one letter.
type Engagement struct {
	LetterID  string           `json:"letter_id"`
	Likes     int64            `json:"likes"`
	Comments  int64            `json:"comments"`
	Reactions map[string]int64 `json:"reactions"`
}
