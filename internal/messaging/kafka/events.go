package kafka

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события магазина.
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderPaid          EventType = "order.paid"
	EventTypeOrderStatusChanged EventType = "order.status_changed"

	// Product события
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductUpdated EventType = "product.updated"
	EventTypeProductDeleted EventType = "product.deleted"
)

// Topics для Kafka.
const (
	TopicOrderEvents   = "shop.order.events"
	TopicCatalogEvents = "shop.catalog.events"
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventID   string                 `json:"event_id"`
	EventType EventType              `json:"event_type"`
	OrderID   int64                  `json:"order_id"`
	ActorID   int64                  `json:"actor_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ProductEvent представляет событие каталога.
type ProductEvent struct {
	EventID   string                 `json:"event_id"`
	EventType EventType              `json:"event_type"`
	ProductID int64                  `json:"product_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, actorID int64, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		ActorID:   actorID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewProductEvent создает новое событие каталога.
func NewProductEvent(eventType EventType, productID int64, metadata map[string]interface{}) *ProductEvent {
	return &ProductEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: productID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// OrderKey возвращает ключ партиционирования для событий заказа.
func OrderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

// ProductKey возвращает ключ партиционирования для событий каталога.
func ProductKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
