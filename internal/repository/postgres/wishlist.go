package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/VishalYadav30301/wishlist-service/internal/domain"
	"github.com/VishalYadav30301/wishlist-service/pkg/database"
	apperrors "github.com/VishalYadav30301/wishlist-service/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using
// PostgreSQL. The items sequence is stored as a single JSONB document, so
// insertion order survives round-trips and the user_id primary key enforces
// the one-wishlist-per-user invariant.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// FindByUserID retrieves the wishlist for a user.
func (r *WishlistRepository) FindByUserID(ctx context.Context, userID string) (*domain.Wishlist, error) {
	query := `
		SELECT user_id, items, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "FindWishlistByUserID", query)

	w := &domain.Wishlist{}
	var itemsJSON []byte

	err := r.pool.QueryRow(ctx, query, userID).Scan(&w.UserID, &itemsJSON, &w.CreatedAt, &w.UpdatedAt)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundResource("wishlist", userID)
		}
		return nil, fmt.Errorf("find wishlist: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &w.Items); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist items: %w", err)
	}
	if w.Items == nil {
		w.Items = []domain.WishlistItem{}
	}

	return w, nil
}

// Upsert creates or replaces the wishlist keyed by user ID. created_at is
// written once on first insert; items and updated_at are replaced on
// conflict.
func (r *WishlistRepository) Upsert(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	itemsJSON, err := json.Marshal(wishlist.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal wishlist items: %w", err)
	}

	query := `
		INSERT INTO wishlists (user_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	ctx, end := database.TraceQuery(ctx, "UpsertWishlist", query)

	err = r.pool.QueryRow(ctx, query,
		wishlist.UserID,
		itemsJSON,
		wishlist.CreatedAt,
		wishlist.UpdatedAt,
	).Scan(&wishlist.CreatedAt)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("upsert wishlist: %w", err)
	}

	return wishlist, nil
}
