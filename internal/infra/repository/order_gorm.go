package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文と明細を1トランザクションで確定する。
// 作成（PENDING）→明細一括作成→決済参照付きでPAID。途中で失敗したら全部残らない。
func (r *OrderGormRepository) Place(ctx context.Context, order model.Order, items []model.OrderItem, paymentRef string) (model.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Status = model.OrderStatusPending
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		//デモ決済：即時PAIDにする
		res := tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":            model.OrderStatusPaid,
				"payment_reference": paymentRef,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		order.Status = model.OrderStatusPaid
		order.PaymentReference = paymentRef
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// 注文を明細付きで取得
func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, []model.OrderItem, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, nil, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, nil, err
	}

	var items []model.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return model.Order{}, nil, err
	}

	return o, items, nil
}
