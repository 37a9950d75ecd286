package model

import (
	"fmt"
	"time"
)

// Player represents a roster entry that users can link to their
// account for personalization defaults.
type Player struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	JerseyNumber int       `gorm:"not null" json:"jersey_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Player model
func (Player) TableName() string {
	return "players"
}

// FullName returns the player's display name.
func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// JerseyNumberString renders the jersey number for the free-text
// personalization fields on order lines.
func (p *Player) JerseyNumberString() string {
	return fmt.Sprintf("%d", p.JerseyNumber)
}

// UserPlayer links a user to a roster player. Linking is idempotent;
// the composite primary key prevents duplicate rows.
type UserPlayer struct {
	UserID    uint      `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	PlayerID  uint      `gorm:"primarykey;autoIncrement:false" json:"player_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Player Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
}

// TableName specifies the table name for UserPlayer model
func (UserPlayer) TableName() string {
	return "user_players"
}
