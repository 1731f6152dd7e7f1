package domain

import (
	"encoding/json"
	"time"
)

// WishlistItem is a product reference saved in a user's wishlist. Name and
// price are snapshotted from the product service at add time; variants and
// reviews are carried as opaque documents.
type WishlistItem struct {
	ProductID   string            `json:"product_id"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	ImageURL    string            `json:"image_url,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Variants    []json.RawMessage `json:"variants"`
	TotalStock  int               `json:"total_stock"`
	Reviews     []json.RawMessage `json:"reviews"`
}

// Wishlist holds a user's saved product references. At most one wishlist
// exists per user; items keep insertion order and product IDs are unique
// within the list.
type Wishlist struct {
	UserID    string         `json:"user_id"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewWishlist creates an empty wishlist for the given user.
func NewWishlist(userID string) *Wishlist {
	now := time.Now().UTC()
	return &Wishlist{
		UserID:    userID,
		Items:     []WishlistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindItemIndex returns the index of the item with the given product ID,
// or -1 if it is not present.
func (w *Wishlist) FindItemIndex(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// HasItem reports whether the wishlist contains the given product ID.
func (w *Wishlist) HasItem(productID string) bool {
	return w.FindItemIndex(productID) >= 0
}

// RemoveItem removes the item with the given product ID, preserving the
// order of the remaining items. Returns false if the item was not present.
func (w *Wishlist) RemoveItem(productID string) bool {
	idx := w.FindItemIndex(productID)
	if idx < 0 {
		return false
	}
	w.Items = append(w.Items[:idx], w.Items[idx+1:]...)
	return true
}

// ProductDetails is the normalized product payload fetched from the product
// service, used to build wishlist items.
type ProductDetails struct {
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	ImageURL    string            `json:"image_url"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Variants    []json.RawMessage `json:"variants"`
	TotalStock  int               `json:"total_stock"`
	Reviews     []json.RawMessage `json:"reviews"`
}

// NewItemFromProduct builds a wishlist item from product details.
func NewItemFromProduct(productID string, p *ProductDetails) WishlistItem {
	variants := p.Variants
	if variants == nil {
		variants = []json.RawMessage{}
	}
	reviews := p.Reviews
	if reviews == nil {
		reviews = []json.RawMessage{}
	}
	return WishlistItem{
		ProductID:   productID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Description: p.Description,
		Variants:    variants,
		TotalStock:  p.TotalStock,
		Reviews:     reviews,
	}
}

// CartLineItem is a line item as returned by the cart service after a
// transfer. Only product_id and quantity originate from this service; the
// remaining fields are populated by the cart subsystem.
type CartLineItem struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Size        string  `json:"size,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// TransferResult is the outcome of moving a wishlist item into the cart.
type TransferResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	ProductID string         `json:"product_id"`
	CartItems []CartLineItem `json:"cart_items"`
}
