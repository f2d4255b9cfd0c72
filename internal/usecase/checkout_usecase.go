package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/sirupsen/logrus"
)

// CheckoutUsecase はチェックアウトの境界処理だけを持つ。
// 補償処理はしない：Order Sink（リポジトリの1トランザクション）が
// アトミックであることに依存する。
type CheckoutUsecase struct {
	orderRepo repo.OrderRepository
	storage   cart.Storage
	idGen     IDGenerator
	clock     Clock
	log       *logrus.Logger

	//セッションごとの多重送信ガード
	mu       sync.Mutex
	inflight map[string]bool
}

// DI
func NewCheckoutUsecase(
	orderRepo repo.OrderRepository,
	storage cart.Storage,
	idGen IDGenerator,
	clock Clock,
	log *logrus.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		orderRepo: orderRepo,
		storage:   storage,
		idGen:     idGen,
		clock:     clock,
		log:       log,
		inflight:  map[string]bool{},
	}
}

type CheckoutItemOutput struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutOutput struct {
	OrderID          string               `json:"order_id"`
	Status           string               `json:"status"`
	Total            int64                `json:"total"`
	PaymentReference string               `json:"payment_reference"`
	Items            []CheckoutItemOutput `json:"items"`
}

// チェックアウト。
// 未ログインは401、空カートは400、Sink失敗は502（カートはそのまま、再試行可能）。
// 成功時だけカートをクリアする。
func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, userID string) (CheckoutOutput, error) {
	if userID == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	if sessionID == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "missing session")
	}

	//同一セッションで処理中なら二重送信させない
	if !u.begin(sessionID) {
		return CheckoutOutput{}, NewHTTPError(http.StatusConflict, "checkout in progress")
	}
	defer u.end(sessionID)

	store := cart.NewStore(sessionID, u.storage)
	if err := store.Load(ctx); err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	state := store.State()
	if len(state.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	now := u.clock.Now()

	//注文はカートのスナップショット価格で確定する
	items := make([]model.OrderItem, 0, len(state.Items))
	for _, it := range state.Items {
		items = append(items, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: it.Name,
			UnitPriceSnapshot:   it.Price,
			Quantity:            it.Quantity,
			CreatedAt:           now,
		})
	}

	order := model.Order{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		Total:     state.TotalPrice(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	//デモ決済の参照番号
	paymentRef := fmt.Sprintf("DEMO-%d", now.UnixMilli())

	placed, err := u.orderRepo.Place(ctx, order, items, paymentRef)
	if err != nil {
		//Sink失敗：カートには触らない。利用者が再試行する
		if u.log != nil {
			u.log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"user_id":    userID,
			}).WithError(err).Error("order placement failed")
		}
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "order failed")
	}

	//成功したらカートをクリア。クリア失敗は注文を無かったことにしない
	if err := store.Clear(ctx); err != nil && u.log != nil {
		u.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"order_id":   placed.ID,
		}).WithError(err).Warn("cart clear after checkout failed")
	}

	out := CheckoutOutput{
		OrderID:          placed.ID,
		Status:           string(placed.Status),
		Total:            placed.Total,
		PaymentReference: placed.PaymentReference,
	}
	for _, it := range items {
		out.Items = append(out.Items, CheckoutItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return out, nil
}

func (u *CheckoutUsecase) begin(sessionID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.inflight[sessionID] {
		return false
	}
	u.inflight[sessionID] = true
	return true
}

func (u *CheckoutUsecase) end(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.inflight, sessionID)
}
