package model

import "time"

type Restaurant struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Address     *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	City        *string   `gorm:"type:varchar(100)" json:"city,omitempty"`
	State       *string   `gorm:"type:varchar(100)" json:"state,omitempty"`
	ZipCode     *string   `gorm:"type:varchar(20)" json:"zip_code,omitempty"`
	Phone       *string   `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Image       *string   `gorm:"type:varchar(255)" json:"image,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	OwnerID     int64     `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
