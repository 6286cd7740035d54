package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus は入力のステータスが定義済みか確認します。
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// TerminalOrderStatus は終端ステータス（以後の遷移禁止）かどうか。
func TerminalOrderStatus(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Order struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	TotalPriceCents int64         `gorm:"not null" json:"total_price_cents"`
	CustomerNote    *string       `gorm:"type:text" json:"customer_note,omitempty"`
	DeliveryAddress *string       `gorm:"type:varchar(255)" json:"delivery_address,omitempty"`
	CustomerID      int64         `gorm:"not null;index" json:"customer_id"`
	Customer        *User         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RestaurantID    int64         `gorm:"not null;index" json:"restaurant_id"`
	Restaurant      *Restaurant   `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
