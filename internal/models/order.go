package models

import "time"

// OrderStatus is the fulfilment state shown to administrators.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a customer purchase. Amounts are stored in minor units.
type Order struct {
	Base
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"order_number"`
	TotalPrice  int64       `gorm:"not null;default:0" json:"total_price"`
	Status      OrderStatus `gorm:"not null;default:pending" json:"status"`
	IsPaid      bool        `gorm:"not null;default:false" json:"is_paid"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	IsDelivered bool        `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt *time.Time  `json:"delivered_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
