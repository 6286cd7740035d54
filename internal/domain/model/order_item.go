package model

import "time"

// OrderItemは作成後に変更しない。PriceCentsは注文時点の単価スナップショット。
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	MenuItemID int64     `gorm:"not null;index" json:"menu_item_id"`
	MenuItem   *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
