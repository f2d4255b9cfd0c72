package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

type Order struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//確定時点の合計金額
	Total int64 `gorm:"not null" json:"total"`

	//決済参照（デモ決済では DEMO-xxx）
	PaymentReference string `gorm:"type:varchar(255)" json:"payment_reference"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
