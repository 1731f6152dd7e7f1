package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VishalYadav30301/wishlist-service/internal/cache"
	"github.com/VishalYadav30301/wishlist-service/internal/client"
	"github.com/VishalYadav30301/wishlist-service/internal/domain"
	"github.com/VishalYadav30301/wishlist-service/internal/event"
	"github.com/VishalYadav30301/wishlist-service/internal/repository"
	apperrors "github.com/VishalYadav30301/wishlist-service/pkg/errors"
)

// WishlistService orchestrates wishlist operations across the store, the
// product service, the cart service, and the TTL cache. It owns all cache
// lifecycle decisions: reads populate the cache, mutations invalidate it,
// and post-mutation state is never written back directly (the next read
// re-fetches the authoritative document from the store).
type WishlistService struct {
	repo     repository.WishlistRepository
	cache    cache.Cache
	products client.ProductClient
	cart     client.CartClient
	producer *event.Producer
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	c cache.Cache,
	products client.ProductClient,
	cart client.CartClient,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		repo:     repo,
		cache:    c,
		products: products,
		cart:     cart,
		producer: producer,
		logger:   logger,
	}
}

// GetWishlist retrieves the wishlist for a user.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wishlist, err := s.findWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		return nil, apperrors.NotFound("Wishlist not found")
	}
	return wishlist, nil
}

// AddItem fetches authoritative product data and appends a new item to the
// user's wishlist, creating the wishlist on first use. Product IDs are
// unique within a wishlist; adding a duplicate fails.
func (s *WishlistService) AddItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("Product ID is required")
	}

	product, err := s.getProductDetails(ctx, productID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.findWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		wishlist = domain.NewWishlist(userID)
	}

	if wishlist.HasItem(productID) {
		return nil, apperrors.InvalidInput("Item already exists in wishlist")
	}

	item := domain.NewItemFromProduct(productID, product)
	wishlist.Items = append(wishlist.Items, item)
	wishlist.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Upsert(ctx, wishlist)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}

	s.invalidateWishlist(ctx, userID)

	if err := s.producer.PublishItemAdded(ctx, saved, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item_added event",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return saved, nil
}

// RemoveItem removes a product from the user's wishlist.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	wishlist, err := s.findWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		return nil, apperrors.NotFound("Wishlist not found")
	}

	if !wishlist.RemoveItem(productID) {
		return nil, apperrors.NotFound("Item not found in wishlist")
	}
	wishlist.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Upsert(ctx, wishlist)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}

	s.invalidateWishlist(ctx, userID)

	if err := s.producer.PublishItemRemoved(ctx, saved, productID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item_removed event",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return saved, nil
}

// ClearWishlist empties the user's wishlist. Clearing an already-empty
// wishlist succeeds.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wishlist, err := s.findWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		return nil, apperrors.NotFound("Wishlist not found")
	}

	wishlist.Items = []domain.WishlistItem{}
	wishlist.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Upsert(ctx, wishlist)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}

	s.invalidateWishlist(ctx, userID)

	if err := s.producer.PublishCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return saved, nil
}

// AddToCart moves a wishlist item into the cart subsystem: cart call first,
// wishlist removal only after the response passes the validation gate. The
// flow is sequential and non-compensating; if the cart call fails the item
// stays in the wishlist, and if removal fails after the cart accepted the
// item, the cart side-effect stands (accepted inconsistency window, no
// rollback is attempted).
func (s *WishlistService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.TransferResult, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("Product ID is required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	// Resolve the product first to confirm the item is addressable; any
	// failure aborts before the cart is touched.
	if _, err := s.getProductDetails(ctx, productID); err != nil {
		return nil, err
	}

	lineItems := []client.TransferLineItem{{ProductID: productID, Quantity: quantity}}

	resp, err := s.cart.AddToCart(ctx, userID, lineItems)
	if err != nil {
		s.logger.ErrorContext(ctx, "cart service call failed",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.InvalidInput("Unable to add item to cart: " + err.Error())
	}

	if err := validateCartResponse(resp); err != nil {
		s.logger.ErrorContext(ctx, "cart service response rejected",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// Commit point: the cart holds the item, remove it from the wishlist.
	if _, err := s.RemoveItem(ctx, userID, productID); err != nil {
		s.logger.ErrorContext(ctx, "wishlist removal failed after cart accepted the item",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := s.producer.PublishItemMovedToCart(ctx, userID, productID, quantity); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item_moved_to_cart event",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return &domain.TransferResult{
		Success:   true,
		Message:   "Item added to cart successfully",
		ProductID: productID,
		CartItems: resp.Items,
	}, nil
}

// validateCartResponse applies the transfer gate: the cart call only counts
// as successful when a non-null, non-empty response with a proper items
// array came back.
func validateCartResponse(resp *client.CartResponse) error {
	switch {
	case resp == nil || resp.IsNull():
		return apperrors.InvalidInput("Failed to add item to cart - no response from cart service")
	case resp.IsEmpty():
		return apperrors.InvalidInput("Cart service returned empty response - service may be unavailable")
	case !resp.HasValidItems():
		return apperrors.InvalidInput("Invalid response format from cart service")
	}
	return nil
}

// rawProduct is the wire shape of a product document for required-field
// validation. Price is a pointer so a missing field is distinguishable
// from zero.
type rawProduct struct {
	Name        string            `json:"name"`
	Price       *float64          `json:"price"`
	ImageURL    string            `json:"image_url"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Variants    []json.RawMessage `json:"variants"`
	TotalStock  int               `json:"total_stock"`
	Reviews     []json.RawMessage `json:"reviews"`
}

// getProductDetails resolves product details through the product cache.
// Read-through only: a hit is returned unconditionally, a miss fetches from
// the product service, validates, normalizes, and populates the cache.
func (s *WishlistService) getProductDetails(ctx context.Context, productID string) (*domain.ProductDetails, error) {
	key := cache.ProductKey(productID)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached domain.ProductDetails
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.DebugContext(ctx, "product cache hit", slog.String("product_id", productID))
			return &cached, nil
		}
		// Undecodable entry: treat as a miss and refetch.
	}

	result, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		s.logger.ErrorContext(ctx, "product lookup failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.UpstreamUnavailable("Failed to fetch product details")
	}

	switch result.Status {
	case client.ProductNotFound:
		return nil, apperrors.NotFound("Product not found")
	case client.ProductError:
		return nil, apperrors.InvalidInput("Failed to fetch product details")
	}

	var raw rawProduct
	if err := json.Unmarshal(result.Payload, &raw); err != nil || raw.Name == "" || raw.Price == nil {
		return nil, apperrors.InvalidInput("Invalid product data format")
	}

	details := &domain.ProductDetails{
		Name:        raw.Name,
		Price:       *raw.Price,
		ImageURL:    raw.ImageURL,
		Category:    raw.Category,
		Description: raw.Description,
		Variants:    raw.Variants,
		TotalStock:  raw.TotalStock,
		Reviews:     raw.Reviews,
	}

	if encoded, err := json.Marshal(details); err == nil {
		s.cache.Set(ctx, key, encoded)
	}

	return details, nil
}

// findWishlist resolves the wishlist document through the wishlist cache.
// Absence returns (nil, nil) and is never negatively cached.
func (s *WishlistService) findWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	key := cache.WishlistKey(userID)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached domain.Wishlist
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.DebugContext(ctx, "wishlist cache hit", slog.String("user_id", userID))
			return &cached, nil
		}
	}

	wishlist, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find wishlist: %w", err)
	}

	if encoded, err := json.Marshal(wishlist); err == nil {
		s.cache.Set(ctx, key, encoded)
	}

	return wishlist, nil
}

// invalidateWishlist evicts the cached wishlist document after a mutation.
func (s *WishlistService) invalidateWishlist(ctx context.Context, userID string) {
	s.cache.Delete(ctx, cache.WishlistKey(userID))
	s.logger.DebugContext(ctx, "wishlist cache invalidated", slog.String("user_id", userID))
}
