package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/VishalYadav30301/wishlist-service/internal/cache"
	"github.com/VishalYadav30301/wishlist-service/internal/client"
	"github.com/VishalYadav30301/wishlist-service/internal/domain"
	"github.com/VishalYadav30301/wishlist-service/internal/event"
	apperrors "github.com/VishalYadav30301/wishlist-service/pkg/errors"
	pkgkafka "github.com/VishalYadav30301/wishlist-service/pkg/kafka"
)

// --- Mock Repository ---

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) FindByUserID(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Upsert(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	args := m.Called(ctx, wishlist)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

// --- Mock Clients ---

type mockProductClient struct {
	mock.Mock
}

func (m *mockProductClient) GetProduct(ctx context.Context, productID string) (*client.ProductResult, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ProductResult), args.Error(1)
}

type mockCartClient struct {
	mock.Mock
}

func (m *mockCartClient) AddToCart(ctx context.Context, userID string, items []client.TransferLineItem) (*client.CartResponse, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CartResponse), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testDeps struct {
	repo     *mockWishlistRepository
	products *mockProductClient
	cart     *mockCartClient
	cache    *cache.Memory
}

func newTestService(t *testing.T) (*WishlistService, *testDeps) {
	t.Helper()
	logger := newTestLogger()
	// Kafka producer pointed at nothing; publish failures are logged and ignored.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	deps := &testDeps{
		repo:     new(mockWishlistRepository),
		products: new(mockProductClient),
		cart:     new(mockCartClient),
		cache:    cache.NewMemory(5 * time.Minute),
	}
	svc := NewWishlistService(deps.repo, deps.cache, deps.products, deps.cart, producer, logger)
	return svc, deps
}

func widgetResult() *client.ProductResult {
	return &client.ProductResult{
		Status:  client.ProductFound,
		Payload: json.RawMessage(`{"name":"Widget","price":9.99}`),
	}
}

func wishlistWith(userID string, productIDs ...string) *domain.Wishlist {
	w := domain.NewWishlist(userID)
	for _, id := range productIDs {
		w.Items = append(w.Items, domain.WishlistItem{
			ProductID:  id,
			Name:       "Widget",
			Price:      9.99,
			Variants:   []json.RawMessage{},
			Reviews:    []json.RawMessage{},
			TotalStock: 0,
		})
	}
	return w
}

func cartResponse(t *testing.T, body string) *client.CartResponse {
	t.Helper()
	var r client.CartResponse
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return &r
}

func notFoundErr(userID string) error {
	return apperrors.NotFoundResource("wishlist", userID)
}

// --- GetWishlist ---

func TestGetWishlist_Existing(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	expected := wishlistWith("u1", "p1")
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(expected, nil)

	got, err := svc.GetWishlist(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	require.Len(t, got.Items, 1)
	deps.repo.AssertExpectations(t)
}

func TestGetWishlist_NotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "ghost").Return(nil, notFoundErr("ghost"))

	got, err := svc.GetWishlist(context.Background(), "ghost")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Wishlist not found", appErr.Message)
	deps.repo.AssertExpectations(t)
}

func TestGetWishlist_SecondReadServedFromCache(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil).Once()

	first, err := svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)

	second, err := svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Len(t, second.Items, 1)

	deps.repo.AssertExpectations(t)
	deps.repo.AssertNumberOfCalls(t, "FindByUserID", 1)
}

func TestGetWishlist_StoreError(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(nil, errors.New("connection reset"))

	got, err := svc.GetWishlist(context.Background(), "u1")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	deps.repo.AssertExpectations(t)
}

// --- AddItem ---

func TestAddItem_Success(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(nil, notFoundErr("u1"))
	deps.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(w *domain.Wishlist) bool {
		return w.UserID == "u1" && len(w.Items) == 1 && w.Items[0].ProductID == "p1"
	})).Return(wishlistWith("u1", "p1"), nil)

	got, err := svc.AddItem(ctx, "u1", "p1")

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	item := got.Items[0]
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, 9.99, item.Price)
	assert.Equal(t, 0, item.TotalStock)
	assert.Empty(t, item.Reviews)
	deps.repo.AssertExpectations(t)
	deps.products.AssertExpectations(t)
}

func TestAddItem_MissingProductID(t *testing.T) {
	svc, deps := newTestService(t)

	got, err := svc.AddItem(context.Background(), "u1", "")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Product ID is required", appErr.Message)
	deps.products.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestAddItem_Duplicate(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil)

	got, err := svc.AddItem(context.Background(), "u1", "p1")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Item already exists in wishlist", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddItem_UniquenessAcrossSequentialAdds(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(nil, notFoundErr("u1")).Once()
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(wishlistWith("u1", "p1"), nil).Once()

	_, err := svc.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)

	// Second add sees the persisted state and must fail.
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil).Once()

	_, err = svc.AddItem(ctx, "u1", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Item already exists in wishlist")
	deps.repo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "missing").
		Return(&client.ProductResult{Status: client.ProductNotFound}, nil)

	got, err := svc.AddItem(context.Background(), "u1", "missing")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Product not found", appErr.Message)
	// No wishlist is read or mutated when the product lookup fails.
	deps.repo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddItem_ProductPayloadMissingPrice(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(&client.ProductResult{
		Status:  client.ProductFound,
		Payload: json.RawMessage(`{"name":"Widget"}`),
	}, nil)

	got, err := svc.AddItem(context.Background(), "u1", "p1")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid product data format", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestAddItem_ProductPayloadMissingName(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(&client.ProductResult{
		Status:  client.ProductFound,
		Payload: json.RawMessage(`{"price":9.99}`),
	}, nil)

	_, err := svc.AddItem(context.Background(), "u1", "p1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid product data format")
}

func TestAddItem_ProductTransportError(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(nil, errors.New("dial tcp: connection refused"))

	got, err := svc.AddItem(context.Background(), "u1", "p1")

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "Failed to fetch product details", appErr.Message)
}

func TestAddItem_ProductRemoteRejection(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").
		Return(&client.ProductResult{Status: client.ProductError}, nil)

	_, err := svc.AddItem(context.Background(), "u1", "p1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Failed to fetch product details", appErr.Message)
}

func TestAddItem_ProductServedFromCache(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil).Once()
	deps.repo.On("FindByUserID", mock.Anything, mock.Anything).Return(nil, notFoundErr("any"))
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(wishlistWith("u1", "p1"), nil)

	_, err := svc.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)

	// A different user adding the same product hits the product cache.
	_, err = svc.AddItem(ctx, "u2", "p1")
	require.NoError(t, err)

	deps.products.AssertNumberOfCalls(t, "GetProduct", 1)
}

func TestAddItem_InvalidatesWishlistCache(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	// Prime the wishlist cache.
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1"), nil).Once()
	_, err := svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(wishlistWith("u1", "p1"), nil)

	_, err = svc.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)

	// The next read must go back to the store, not serve the pre-mutation
	// cached document.
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil).Once()

	got, err := svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	// Two store reads: the priming read and the post-invalidation read.
	// AddItem itself was served from the still-valid cached document.
	deps.repo.AssertNumberOfCalls(t, "FindByUserID", 2)
}

func TestAddItem_StoreFailure(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(nil, notFoundErr("u1"))
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock detected"))

	got, err := svc.AddItem(context.Background(), "u1", "p1")

	assert.Nil(t, got)
	require.Error(t, err)
	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr), "store failures stay untyped for the boundary to render as internal")
}

// --- RemoveItem ---

func TestRemoveItem_Success(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1", "p2"), nil)
	deps.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(w *domain.Wishlist) bool {
		return len(w.Items) == 1 && w.Items[0].ProductID == "p2"
	})).Return(wishlistWith("u1", "p2"), nil)

	got, err := svc.RemoveItem(context.Background(), "u1", "p1")

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p2", got.Items[0].ProductID)
	deps.repo.AssertExpectations(t)
}

func TestRemoveItem_WishlistNotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "ghost").Return(nil, notFoundErr("ghost"))

	_, err := svc.RemoveItem(context.Background(), "ghost", "p1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Wishlist not found", appErr.Message)
}

func TestRemoveItem_ItemNotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil)

	_, err := svc.RemoveItem(context.Background(), "u1", "p9")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Item not found in wishlist", appErr.Message)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

// --- ClearWishlist ---

func TestClearWishlist_Success(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1", "p2"), nil)
	deps.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(w *domain.Wishlist) bool {
		return len(w.Items) == 0
	})).Return(wishlistWith("u1"), nil)

	got, err := svc.ClearWishlist(context.Background(), "u1")

	require.NoError(t, err)
	assert.Empty(t, got.Items)
	deps.repo.AssertExpectations(t)
}

func TestClearWishlist_Idempotent(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil).Once()
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(wishlistWith("u1"), nil).Twice()

	first, err := svc.ClearWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, first.Items)

	// Clearing an already-empty wishlist succeeds, it is not an error.
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1"), nil).Once()

	second, err := svc.ClearWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, second.Items)
}

func TestClearWishlist_NotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.repo.On("FindByUserID", mock.Anything, "ghost").Return(nil, notFoundErr("ghost"))

	_, err := svc.ClearWishlist(context.Background(), "ghost")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Wishlist not found", appErr.Message)
}

// --- AddToCart ---

func TestAddToCart_Success(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", []client.TransferLineItem{{ProductID: "p1", Quantity: 2}}).
		Return(cartResponse(t, `{"items":[{"product_id":"p1","quantity":2,"price":9.99}]}`), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil).Once()
	deps.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(w *domain.Wishlist) bool {
		return len(w.Items) == 0
	})).Return(wishlistWith("u1"), nil)

	result, err := svc.AddToCart(ctx, "u1", "p1", 2)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "p1", result.ProductID)
	assert.Equal(t, "Item added to cart successfully", result.Message)
	require.Len(t, result.CartItems, 1)
	assert.Equal(t, 2, result.CartItems[0].Quantity)

	// The wishlist is empty on the next read.
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1"), nil).Once()
	after, err := svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, after.Items)

	deps.repo.AssertExpectations(t)
	deps.cart.AssertExpectations(t)
}

func TestAddToCart_MissingProductID(t *testing.T) {
	svc, deps := newTestService(t)

	result, err := svc.AddToCart(context.Background(), "u1", "", 1)

	assert.Nil(t, result)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Product ID is required", appErr.Message)
	deps.cart.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_DefaultsQuantityToOne(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", []client.TransferLineItem{{ProductID: "p1", Quantity: 1}}).
		Return(cartResponse(t, `{"items":[{"product_id":"p1","quantity":1}]}`), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil)
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(wishlistWith("u1"), nil)

	result, err := svc.AddToCart(context.Background(), "u1", "p1", 0)

	require.NoError(t, err)
	assert.True(t, result.Success)
	deps.cart.AssertExpectations(t)
}

func TestAddToCart_ProductLookupFailureAbortsBeforeCart(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "missing").
		Return(&client.ProductResult{Status: client.ProductNotFound}, nil)

	result, err := svc.AddToCart(context.Background(), "u1", "missing", 1)

	assert.Nil(t, result)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Product not found", appErr.Message)
	deps.cart.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_EmptyResponse_ItemStaysInWishlist(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(cartResponse(t, `{}`), nil)

	result, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	assert.Nil(t, result)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "empty response - service may be unavailable")

	// Removal never happened; the wishlist was not even loaded.
	deps.repo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToCart_NullResponse(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(cartResponse(t, `null`), nil)

	_, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "no response from cart service")
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToCart_InvalidItemsField(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(cartResponse(t, `{"items":"not-an-array"}`), nil)

	_, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid response format from cart service", appErr.Message)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToCart_NonObjectResponseBody(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(cartResponse(t, `[{"product_id":"p1"}]`), nil)

	_, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid response format from cart service", appErr.Message)
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToCart_TransportErrorWrapped(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused"))

	_, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "Unable to add item to cart")
	assert.Contains(t, appErr.Message, "connection refused")
	deps.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToCart_TypedCartErrorPropagatesUnchanged(t *testing.T) {
	svc, deps := newTestService(t)

	typed := apperrors.ServiceUnavailable("cart: service unavailable")
	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).Return(nil, typed)

	_, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "cart: service unavailable", appErr.Message)
}

func TestAddToCart_RemovalFailureAfterCommitPoint(t *testing.T) {
	svc, deps := newTestService(t)

	deps.products.On("GetProduct", mock.Anything, "p1").Return(widgetResult(), nil)
	deps.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(cartResponse(t, `{"items":[{"product_id":"p1","quantity":1}]}`), nil)
	deps.repo.On("FindByUserID", mock.Anything, "u1").Return(wishlistWith("u1", "p1"), nil)
	deps.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	result, err := svc.AddToCart(context.Background(), "u1", "p1", 1)

	// The cart side-effect already happened; the error surfaces and no
	// compensation is attempted (the cart client is called exactly once).
	assert.Nil(t, result)
	require.Error(t, err)
	deps.cart.AssertNumberOfCalls(t, "AddToCart", 1)
}
