package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), want), "error %q should contain %q", err, want)
}

var teaProduct = model.Product{
	ID:       "p-1",
	Name:     "Rooibos Blend",
	Category: "tea",
	Price:    1500,
	Stock:    10,
	IsActive: true,
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_SnapshotsProduct(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	out, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "Rooibos Blend", out.Items[0].Name)
	assert.Equal(t, "tea", out.Items[0].Category)
	assert.Equal(t, int64(1500), out.Items[0].Price)
	assert.Equal(t, int64(1), out.Items[0].Quantity)
	assert.Equal(t, int64(1500), out.Total)
}

func TestCartUsecase_AddToCart_SameProductIncrementsQuantity(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)
	out, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, int64(3000), out.Total)
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "nope")
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()

	inactive := teaProduct
	inactive.IsActive = false

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(inactive, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assertErrContains(t, err, "invalid")
}

// 追加後にカタログ価格が変わっても、カートの価格は追加時点のまま
func TestCartUsecase_AddToCart_PriceChangeDoesNotAffectExistingItems(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil).Once()

	uc := usecase.NewCartUsecase(pRepo, storage, nil)
	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	//値上げ後のカタログ
	raised := teaProduct
	raised.Price = 9999
	pRepo.On("FindByID", mock.Anything, "p-1").Return(raised, nil)

	out, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	//既存明細に加算されるだけで、価格は最初のスナップショット
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1500), out.Items[0].Price)
	assert.Equal(t, int64(3000), out.Total)
}

// =====================
// UpdateItem / RemoveItem / ClearCart
// =====================

func TestCartUsecase_UpdateItem_ZeroRemoves(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	out, err := uc.UpdateItem(ctx, "sid-1", "p-1", 0)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.Equal(t, int64(0), out.Total)
}

func TestCartUsecase_UpdateItem_SetsExactQuantity(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	out, err := uc.UpdateItem(ctx, "sid-1", "p-1", 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), out.Items[0].Quantity)
	assert.Equal(t, int64(6000), out.Total)
}

func TestCartUsecase_RemoveItem(t *testing.T) {
	ctx := context.Background()

	other := teaProduct
	other.ID = "p-2"
	other.Name = "Buchu Extract"

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)
	pRepo.On("FindByID", mock.Anything, "p-2").Return(other, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)
	_, err = uc.AddToCart(ctx, "sid-1", "p-2")
	assert.NoError(t, err)

	out, err := uc.RemoveItem(ctx, "sid-1", "p-1")
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "p-2", out.Items[0].ProductID)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, cart.NewMemoryStorage(), nil)

	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	out, err := uc.ClearCart(ctx, "sid-1")
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.Equal(t, int64(0), out.TotalItems)
	assert.Equal(t, int64(0), out.Total)
}

// カートはリロード（別リクエスト）をまたいで同じセッションに残る
func TestCartUsecase_CartSurvivesAcrossRequests(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "p-1").Return(teaProduct, nil)

	uc := usecase.NewCartUsecase(pRepo, storage, nil)
	_, err := uc.AddToCart(ctx, "sid-1", "p-1")
	assert.NoError(t, err)

	//別のusecaseインスタンス＝別リクエストの想定
	uc2 := usecase.NewCartUsecase(pRepo, storage, nil)
	out, err := uc2.GetCart(ctx, "sid-1")
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1500), out.Total)
}

func TestCartUsecase_MissingSession(t *testing.T) {
	ctx := context.Background()

	uc := usecase.NewCartUsecase(new(CartProductRepoMock), cart.NewMemoryStorage(), nil)

	_, err := uc.GetCart(ctx, "")
	assertErrContains(t, err, "missing session")
}
