package model

import "time"

type MenuCategory string

const (
	CategoryAppetizer  MenuCategory = "appetizer"
	CategoryMainCourse MenuCategory = "main_course"
	CategoryDessert    MenuCategory = "dessert"
	CategoryBeverage   MenuCategory = "beverage"
	CategorySide       MenuCategory = "side"
)

// ValidMenuCategory は入力のカテゴリが定義済みか確認します。
func ValidMenuCategory(c MenuCategory) bool {
	switch c {
	case CategoryAppetizer, CategoryMainCourse, CategoryDessert, CategoryBeverage, CategorySide:
		return true
	default:
		return false
	}
}

type MenuItem struct {
	ID           int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	Description  *string      `gorm:"type:text" json:"description,omitempty"`
	PriceCents   int64        `gorm:"not null" json:"price_cents"`
	Category     MenuCategory `gorm:"type:varchar(20);not null" json:"category"`
	Image        *string      `gorm:"type:varchar(255)" json:"image,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	IsAvailable  bool         `gorm:"not null;default:true" json:"is_available"`
	RestaurantID int64        `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   *Restaurant  `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
