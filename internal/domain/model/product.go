package model

import "time"

// 商品（ハーブ製品）。
// priceは最小通貨単位（セント）で持つ。
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Stock       int64     `gorm:"not null" json:"stock"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
