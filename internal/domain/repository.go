package domain

import "context"

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента и возвращает запись с проставленными
	// хранилищем временными метками. Повторный email — ConflictError.
	Create(ctx context.Context, customer Customer) (Customer, error)
	// Get возвращает клиента или NotFoundError.
	Get(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	// Update перезаписывает контактные поля и выставляет updated_at.
	Update(ctx context.Context, customer Customer) (Customer, error)
	// Delete удаляет клиента. Принадлежащие ему заказы и их позиции
	// удаляются каскадно.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	Create(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id string) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	// Delete удаляет категорию вместе со связями в таблице связей.
	Delete(ctx context.Context, id string) error
}

// ShopItemRepository описывает требования к хранилищу товаров.
// Связи с категориями меняются по схеме replace-all в той же атомарной
// операции, что и сам товар; каждая категория из categoryIDs обязана
// существовать, иначе NotFoundError с первым отсутствующим id.
type ShopItemRepository interface {
	Create(ctx context.Context, item ShopItem, categoryIDs []string) (ShopItem, error)
	// Get возвращает товар с заполненным списком категорий.
	Get(ctx context.Context, id string) (ShopItem, error)
	List(ctx context.Context) ([]ShopItem, error)
	Update(ctx context.Context, item ShopItem, categoryIDs []string) (ShopItem, error)
	// Delete удаляет товар, его связи с категориями и ссылающиеся на него
	// позиции заказов.
	Delete(ctx context.Context, id string) error
}

// OrderRepository описывает требования к хранилищу агрегата заказа.
// Каждая мутация выполняется как единая атомарная операция: проверки
// существования клиента и каждого товара идут внутри той же транзакции,
// что и запись, поэтому частичный агрегат никогда не фиксируется.
// Ответ мутации — повторное чтение собранного представления, а не эхо
// переданных данных: проставленные хранилищем значения авторитетны.
type OrderRepository interface {
	Create(ctx context.Context, order Order) (OrderView, error)
	// Replace обновляет заказ по схеме replace-all: строка заказа
	// блокируется, прежние позиции удаляются, новый набор вставляется
	// целиком. Параллельные Replace одного заказа сериализуются.
	Replace(ctx context.Context, order Order) (OrderView, error)
	// Delete удаляет позиции, затем строку заказа.
	Delete(ctx context.Context, id string) error
	GetView(ctx context.Context, id string) (OrderView, error)
	ListViews(ctx context.Context) ([]OrderView, error)
}
