package model

import "time"

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusEditable  OrderStatus = "EDITABLE"
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusOrdered   OrderStatus = "ORDERED"
	OrderStatusReceived  OrderStatus = "RECEIVED"
)

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusEditable, OrderStatusSubmitted, OrderStatusOrdered, OrderStatusReceived:
		return true
	}
	return false
}

// Editable reports whether the order can still be modified by its owner.
func (s OrderStatus) Editable() bool {
	return s == OrderStatusEditable
}

// Order represents a user's order. An EDITABLE order doubles as the
// user's cart; each user has at most one EDITABLE order at a time.
// TotalCents is derived from the order items and recomputed after
// every mutation.
type Order struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus `gorm:"size:20;not null;default:'EDITABLE';index" json:"status"`
	Paid       bool        `gorm:"not null;default:false" json:"paid"`
	TotalCents int64       `gorm:"not null;default:0" json:"total_cents"`
	Note       string      `gorm:"size:2000" json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Relationships
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a single line of an order. Size, PlayerName and
// PlayerNumber are personalization fields; the empty string means the
// field is absent. Lines within an order merge on the
// (ItemID, Size, PlayerName, PlayerNumber) key.
type OrderItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	ItemID         uint      `gorm:"not null;index" json:"item_id"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Size           string    `gorm:"size:50" json:"size,omitempty"`
	PlayerName     string    `gorm:"size:100" json:"player_name,omitempty"`
	PlayerNumber   string    `gorm:"size:10" json:"player_number,omitempty"`
	LineTotalCents int64     `gorm:"not null" json:"line_total_cents"`
	CreatedAt      time.Time `json:"created_at"`

	// Relationships
	Item Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// SameLine reports whether another line shares this line's merge key.
func (oi *OrderItem) SameLine(itemID uint, size, playerName, playerNumber string) bool {
	return oi.ItemID == itemID &&
		oi.Size == size &&
		oi.PlayerName == playerName &&
		oi.PlayerNumber == playerNumber
}
