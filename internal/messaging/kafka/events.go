package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События жизненного цикла заказа
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"

	// События каталога
	EventTypeShopItemUpdated EventType = "shop_item.updated"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "minishop.order.events"
	TopicCatalogEvents = "minishop.catalog.events"
)

// OrderEvent представляет событие заказа. Публикуется после фиксации
// мутации; это уведомление, а не источник истины.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, customerID string) OrderEvent {
	return OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
	}
}

// CatalogEvent представляет событие каталога
type CatalogEvent struct {
	EventType  EventType `json:"event_type"`
	ShopItemID string    `json:"shop_item_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCatalogEvent создает новое событие каталога
func NewCatalogEvent(eventType EventType, shopItemID string) CatalogEvent {
	return CatalogEvent{
		EventType:  eventType,
		ShopItemID: shopItemID,
		Timestamp:  time.Now().UTC(),
	}
}
