package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文の受け口（Order Sink）。
// 呼び出し側から見てアトミック：失敗したら注文も明細も残らない。
type OrderRepository interface {
	//注文と明細を1トランザクションで確定し、決済参照を付けてPAIDにする
	Place(ctx context.Context, order model.Order, items []model.OrderItem, paymentRef string) (model.Order, error)

	//注文IDで1件取得（明細付き）
	FindByID(ctx context.Context, orderID string) (model.Order, []model.OrderItem, error)
}
