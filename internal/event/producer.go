package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VishalYadav30301/wishlist-service/internal/domain"
	pkgkafka "github.com/VishalYadav30301/wishlist-service/pkg/kafka"
	"github.com/VishalYadav30301/wishlist-service/pkg/logger"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicItemAdded       = "ecommerce.wishlist.item_added"
	TopicItemRemoved     = "ecommerce.wishlist.item_removed"
	TopicCleared         = "ecommerce.wishlist.cleared"
	TopicItemMovedToCart = "ecommerce.wishlist.item_moved_to_cart"
)

// Aggregate type constant.
const AggregateTypeWishlist = "wishlist"

// Source identifier for events originating from the wishlist service.
const SourceWishlistService = "wishlist-service"

// ItemAddedData is the payload for a wishlist.item_added event.
type ItemAddedData struct {
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ItemCount int     `json:"item_count"`
}

// ItemRemovedData is the payload for a wishlist.item_removed event.
type ItemRemovedData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	ItemCount int    `json:"item_count"`
}

// ClearedData is the payload for a wishlist.cleared event.
type ClearedData struct {
	UserID string `json:"user_id"`
}

// ItemMovedToCartData is the payload for a wishlist.item_moved_to_cart event.
type ItemMovedToCartData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishItemAdded publishes a wishlist.item_added event.
func (p *Producer) PublishItemAdded(ctx context.Context, wishlist *domain.Wishlist, item domain.WishlistItem) error {
	data := ItemAddedData{
		UserID:    wishlist.UserID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		ItemCount: len(wishlist.Items),
	}
	return p.publish(ctx, TopicItemAdded, wishlist.UserID, data)
}

// PublishItemRemoved publishes a wishlist.item_removed event.
func (p *Producer) PublishItemRemoved(ctx context.Context, wishlist *domain.Wishlist, productID string) error {
	data := ItemRemovedData{
		UserID:    wishlist.UserID,
		ProductID: productID,
		ItemCount: len(wishlist.Items),
	}
	return p.publish(ctx, TopicItemRemoved, wishlist.UserID, data)
}

// PublishCleared publishes a wishlist.cleared event.
func (p *Producer) PublishCleared(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicCleared, userID, ClearedData{UserID: userID})
}

// PublishItemMovedToCart publishes a wishlist.item_moved_to_cart event.
func (p *Producer) PublishItemMovedToCart(ctx context.Context, userID, productID string, quantity int) error {
	data := ItemMovedToCartData{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return p.publish(ctx, TopicItemMovedToCart, userID, data)
}

func (p *Producer) publish(ctx context.Context, topic, userID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published wishlist event",
		slog.String("topic", topic),
		slog.String("user_id", userID),
	)

	return nil
}
