package model

import "time"

// Item represents a catalog entry. Prices are stored as integer cents.
// DisplayOrder values form a dense permutation 1..N across all items.
type Item struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	PriceCents   int64      `gorm:"not null" json:"price_cents"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	ImageKey     string     `gorm:"size:500" json:"image_key,omitempty"`
	ImageURL     string     `gorm:"size:1000" json:"image_url,omitempty"`
	Sizes        StringList `gorm:"type:text" json:"sizes"`
	Link         string     `gorm:"size:1000" json:"link,omitempty"`
	DisplayOrder int        `gorm:"not null;index" json:"display_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Item model
func (Item) TableName() string {
	return "items"
}

// HasSizes reports whether the item requires a size selection.
func (i *Item) HasSizes() bool {
	return len(i.Sizes) > 0
}

// ValidSize reports whether the given size is allowed for this item.
// Items without sizes only accept the empty size.
func (i *Item) ValidSize(size string) bool {
	if !i.HasSizes() {
		return size == ""
	}
	return i.Sizes.Contains(size)
}
