package repository

import (
	"context"

	"github.com/VishalYadav30301/wishlist-service/internal/domain"
)

// WishlistRepository defines the persistence contract for wishlists. One
// document per user; FindByUserID reports absence with an ErrNotFound-wrapped
// error rather than a nil document.
type WishlistRepository interface {
	// FindByUserID retrieves the wishlist for a user.
	FindByUserID(ctx context.Context, userID string) (*domain.Wishlist, error)

	// Upsert creates or replaces the wishlist keyed by its user ID and
	// returns the persisted document.
	Upsert(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error)
}
