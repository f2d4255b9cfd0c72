package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧の絞り込み条件
type ProductListQuery struct {
	//空なら全カテゴリ
	Category string
}

// 商品カタログの取得だけを約束（カートから見て読み取り専用）。
type ProductRepository interface {
	//公開商品を名前順で返す
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, error)

	//IDで商品を1件取得
	FindByID(ctx context.Context, id string) (model.Product, error)
}
