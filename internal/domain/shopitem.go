package domain

import "time"

// ShopItem — товар каталога. Категории связаны через таблицу связей
// shop_items_to_categories и заполняются при чтении.
type ShopItem struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Categories  []Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShopItemInput — данные создания/обновления товара.
// CategoryIDs трактуется как полный желаемый набор связей (replace-all):
// прежние связи удаляются, новый список вставляется целиком.
// Пустой список означает товар без категорий и ошибкой не является.
type ShopItemInput struct {
	Title       string
	Description string
	Price       float64
	CategoryIDs []string
}

// Validate возвращает первое нарушенное правило или nil.
// Существование категорий проверяется хранилищем внутри транзакции.
func (in ShopItemInput) Validate() error {
	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if in.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be non-negative"}
	}
	for _, id := range in.CategoryIDs {
		if id == "" {
			return &ValidationError{Field: "categoryIds", Reason: "contains empty category id"}
		}
	}
	return nil
}
