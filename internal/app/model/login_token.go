package model

import "time"

// LoginToken is a single-use magic-link token. A token is spent by
// setting ConsumedAt; expired and consumed tokens are purged by the
// scheduler.
type LoginToken struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Token      string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName specifies the table name for LoginToken model
func (LoginToken) TableName() string {
	return "login_tokens"
}

// Usable reports whether the token can still redeem a login.
func (t *LoginToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
