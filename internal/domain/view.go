package domain

import "time"

// OrderView — денормализованное представление заказа, собранное из
// нескольких таблиц. Внешние ссылки разворачиваются через outer join:
// заказ с «повисшим» customer_id остаётся в выдаче с Customer == nil,
// позиция с удалённым товаром — с ShopItem == nil.
type OrderView struct {
	ID         string
	CustomerID string
	Customer   *Customer
	Items      []OrderItemView
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItemView — позиция заказа с вложенным товаром (и его категориями).
type OrderItemView struct {
	ID       string
	Quantity int32
	ShopItem *ShopItem
}
