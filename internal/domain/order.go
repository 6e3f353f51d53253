package domain

import "time"

// OrderItem — одна позиция заказа. Дубли (order_id, shop_item_id)
// допустимы и не схлопываются.
type OrderItem struct {
	ID         string
	OrderID    string
	ShopItemID string
	Quantity   int32
	CreatedAt  time.Time
}

// Order агрегирует заказ и его позиции: создаётся, обновляется и
// удаляется как единое целое.
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItemInput — желаемая позиция заказа.
type OrderItemInput struct {
	ShopItemID string
	Quantity   int32
}

// OrderInput — данные создания/обновления заказа. Обновление работает по
// схеме replace-all: прежние позиции удаляются, новый список вставляется
// целиком, у позиций появляются новые идентификаторы.
type OrderInput struct {
	CustomerID string
	Items      []OrderItemInput
}

// Validate возвращает первое нарушенное правило или nil.
// Порядок проверок: наличие полей, затем диапазоны. Существование клиента
// и товаров проверяется хранилищем внутри транзакции.
func (in OrderInput) Validate() error {
	if in.CustomerID == "" {
		return &ValidationError{Field: "customerId", Reason: "is required"}
	}
	if len(in.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	for _, item := range in.Items {
		if item.ShopItemID == "" {
			return &ValidationError{Field: "items", Reason: "each item must have shopItemId"}
		}
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return &ValidationError{Field: "items", Reason: "each item must have positive quantity"}
		}
	}
	return nil
}
