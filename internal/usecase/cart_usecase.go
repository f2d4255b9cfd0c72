package usecase

import (
	"context"
	"net/http"

	"app/internal/cart"
	repo "app/internal/repository"

	"github.com/sirupsen/logrus"
)

// CartUsecase はセッション単位のカート操作の業務ロジックです。
// 状態の実体は cart.Store が持ち、ここでは商品スナップショットの解決と
// セッションへの紐付けだけを行う。
type CartUsecase struct {
	productRepo repo.ProductRepository
	storage     cart.Storage
	log         *logrus.Logger
}

// DI
func NewCartUsecase(productRepo repo.ProductRepository, storage cart.Storage, log *logrus.Logger) *CartUsecase {
	return &CartUsecase{
		productRepo: productRepo,
		storage:     storage,
		log:         log,
	}
}

// CartItemResponse は明細1行。priceは追加時点のスナップショット。
type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
	Total      int64              `json:"total"`
}

// カート取得（保存が無ければ空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	s, err := u.loadStore(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(s.State()), nil
}

// カートに追加（同一商品は数量+1）。
// 名前・カテゴリ・価格は追加時点のカタログ値を写し取る。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, productID string) (CartResponse, error) {
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	s, err := u.loadStore(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.Add(ctx, cart.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
	}); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return toCartResponse(s.State()), nil
}

// 数量をそのまま設定。0以下は削除と同じ。未知のIDは何もしない。
func (u *CartUsecase) UpdateItem(ctx context.Context, sessionID string, productID string, quantity int64) (CartResponse, error) {
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s, err := u.loadStore(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.UpdateQuantity(ctx, productID, quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return toCartResponse(s.State()), nil
}

// 明細削除（無くてもエラーにしない）
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID string) (CartResponse, error) {
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s, err := u.loadStore(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.Remove(ctx, productID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return toCartResponse(s.State()), nil
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	s, err := u.loadStore(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.Clear(ctx); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return toCartResponse(s.State()), nil
}

// セッションのStoreを生成・復元し、変更ログの購読を付ける
func (u *CartUsecase) loadStore(ctx context.Context, sessionID string) (*cart.Store, error) {
	if sessionID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing session")
	}

	s := cart.NewStore(sessionID, u.storage)

	if u.log != nil {
		s.Subscribe(func(st cart.State) {
			u.log.WithFields(logrus.Fields{
				"session_id":  sessionID,
				"total_items": st.TotalItems(),
				"total_price": st.TotalPrice(),
			}).Info("cart updated")
		})
	}

	if err := s.Load(ctx); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "session store error")
	}
	return s, nil
}

func toCartResponse(st cart.State) CartResponse {
	items := make([]CartItemResponse, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  it.Category,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return CartResponse{
		Items:      items,
		TotalItems: st.TotalItems(),
		Total:      st.TotalPrice(),
	}
}
