package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Place(ctx context.Context, order model.Order, items []model.OrderItem, paymentRef string) (model.Order, error) {
	args := m.Called(ctx, order, items, paymentRef)
	placed, _ := args.Get(0).(model.Order)
	return placed, args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, []model.OrderItem, error) {
	panic("not used in CheckoutUsecase tests")
}

type fixedIDGen struct{ id string }

func (g *fixedIDGen) NewID() string { return g.id }

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func seedCart(t *testing.T, storage cart.Storage, sessionID string) cart.State {
	t.Helper()
	ctx := context.Background()

	s := cart.NewStore(sessionID, storage)
	assert.NoError(t, s.Add(ctx, cart.Product{ID: "p-1", Name: "Rooibos Blend", Category: "tea", Price: 1500}))
	assert.NoError(t, s.Add(ctx, cart.Product{ID: "p-2", Name: "Buchu Extract", Category: "extract", Price: 2500}))
	assert.NoError(t, s.Add(ctx, cart.Product{ID: "p-2", Name: "Buchu Extract", Category: "extract", Price: 2500}))
	return s.State()
}

func newCheckoutUC(orders *OrderRepoMock, storage cart.Storage) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(
		orders,
		storage,
		&fixedIDGen{id: "order-1"},
		&fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		nil,
	)
}

// =====================
// Checkout
// =====================

// 未ログインは401。カートには触らない
func TestCheckout_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	seedCart(t, storage, "sid-1")

	orders := new(OrderRepoMock)
	uc := newCheckoutUC(orders, storage)

	_, err := uc.Checkout(ctx, "sid-1", "")
	assertErrContains(t, err, "unauthenticated")

	//カートはそのまま
	s := cart.NewStore("sid-1", storage)
	assert.NoError(t, s.Load(ctx))
	assert.Len(t, s.Items(), 2)

	orders.AssertNotCalled(t, "Place")
}

// 空カートは400
func TestCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	uc := newCheckoutUC(orders, cart.NewMemoryStorage())

	_, err := uc.Checkout(ctx, "sid-1", "user-1")
	assertErrContains(t, err, "cart empty")

	orders.AssertNotCalled(t, "Place")
}

// 成功時：カート内容がそのまま注文になり、カートは一度だけクリアされる
func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	state := seedCart(t, storage, "sid-1")

	wantTotal := state.TotalPrice()

	orders := new(OrderRepoMock)
	orders.On("Place", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.ID == "order-1" && o.UserID == "user-1" && o.Total == wantTotal
	}), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductID == "p-1" && items[0].Quantity == 1 && items[0].UnitPriceSnapshot == 1500 &&
			items[1].ProductID == "p-2" && items[1].Quantity == 2 && items[1].UnitPriceSnapshot == 2500
	}), mock.MatchedBy(func(ref string) bool {
		return len(ref) > 5 && ref[:5] == "DEMO-"
	})).Return(model.Order{
		ID:               "order-1",
		UserID:           "user-1",
		Status:           model.OrderStatusPaid,
		Total:            wantTotal,
		PaymentReference: "DEMO-1748779200000",
	}, nil).Once()

	uc := newCheckoutUC(orders, storage)

	out, err := uc.Checkout(ctx, "sid-1", "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "order-1", out.OrderID)
	assert.Equal(t, string(model.OrderStatusPaid), out.Status)
	assert.Equal(t, wantTotal, out.Total)
	assert.Len(t, out.Items, 2)

	//カートは空になっている
	s := cart.NewStore("sid-1", storage)
	assert.NoError(t, s.Load(ctx))
	assert.Len(t, s.Items(), 0)

	orders.AssertExpectations(t)
}

// Sink失敗：カートはそのまま、再試行できる
func TestCheckout_SinkFailureLeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	seedCart(t, storage, "sid-1")

	orders := new(OrderRepoMock)
	orders.On("Place", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.Order{}, errors.New("connection reset")).Once()

	uc := newCheckoutUC(orders, storage)

	_, err := uc.Checkout(ctx, "sid-1", "user-1")
	assertErrContains(t, err, "order failed")

	s := cart.NewStore("sid-1", storage)
	assert.NoError(t, s.Load(ctx))
	assert.Len(t, s.Items(), 2)

	//再試行は成功できる
	orders.On("Place", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.Order{ID: "order-1", Status: model.OrderStatusPaid}, nil).Once()

	_, err = uc.Checkout(ctx, "sid-1", "user-1")
	assert.NoError(t, err)

	orders.AssertExpectations(t)
}

// 同一セッションの処理中は二重送信を弾く
func TestCheckout_NonReentrantPerSession(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	seedCart(t, storage, "sid-1")

	began := make(chan struct{})
	release := make(chan struct{})

	orders := new(OrderRepoMock)
	orders.On("Place", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(began)
			<-release
		}).
		Return(model.Order{ID: "order-1", Status: model.OrderStatusPaid}, nil).Once()

	uc := newCheckoutUC(orders, storage)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Checkout(ctx, "sid-1", "user-1")
		done <- err
	}()

	<-began

	//1回目が処理中の間の2回目は409
	_, err := uc.Checkout(ctx, "sid-1", "user-1")
	assertErrContains(t, err, "checkout in progress")

	close(release)
	assert.NoError(t, <-done)
}
