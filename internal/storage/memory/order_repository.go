package memory

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type orderRepository struct {
	store *Store
}

func (r *orderRepository) Create(_ context.Context, order domain.Order) (domain.OrderView, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверки ссылок идут до записи: частичный агрегат не сохраняется.
	if err := s.checkOrderReferences(order); err != nil {
		return domain.OrderView{}, err
	}

	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	items := make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = order.ID
		item.CreatedAt = now
		items[i] = item
	}
	order.Items = items
	s.orders[order.ID] = order

	return s.assembleOrderView(order), nil
}

func (r *orderRepository) Replace(_ context.Context, order domain.Order) (domain.OrderView, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[order.ID]
	if !ok {
		return domain.OrderView{}, &domain.NotFoundError{Entity: "order", ID: order.ID}
	}

	if err := s.checkOrderReferences(order); err != nil {
		return domain.OrderView{}, err
	}

	now := s.now()
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = now
	// Replace-all: прежние позиции выбрасываются, новые получают свои id.
	items := make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = order.ID
		item.CreatedAt = now
		items[i] = item
	}
	order.Items = items
	s.orders[order.ID] = order

	return s.assembleOrderView(order), nil
}

func (r *orderRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	delete(s.orders, id)

	return nil
}

func (r *orderRepository) GetView(_ context.Context, id string) (domain.OrderView, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.OrderView{}, &domain.NotFoundError{Entity: "order", ID: id}
	}

	return s.assembleOrderView(order), nil
}

func (r *orderRepository) ListViews(_ context.Context) ([]domain.OrderView, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.OrderView, 0, len(s.orders))
	for _, order := range s.orders {
		views = append(views, s.assembleOrderView(order))
	}
	sortByCreation(views,
		func(v domain.OrderView) time.Time { return v.CreatedAt },
		func(v domain.OrderView) string { return v.ID })

	return views, nil
}

// checkOrderReferences проверяет клиента, затем каждый товар по порядку,
// чтобы ошибка назвала конкретный отсутствующий id. Под мьютексом.
func (s *Store) checkOrderReferences(order domain.Order) error {
	if _, ok := s.customers[order.CustomerID]; !ok {
		return &domain.NotFoundError{Entity: "customer", ID: order.CustomerID}
	}
	for _, item := range order.Items {
		if _, ok := s.shopItems[item.ShopItemID]; !ok {
			return &domain.NotFoundError{Entity: "shop item", ID: item.ShopItemID}
		}
	}
	return nil
}

// assembleOrderView разворачивает ссылки заказа в денормализованное
// представление. «Повисшие» ссылки дают пустое вложенное поле, а не
// исчезновение заказа или позиции. Под мьютексом.
func (s *Store) assembleOrderView(order domain.Order) domain.OrderView {
	view := domain.OrderView{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Items:      make([]domain.OrderItemView, 0, len(order.Items)),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}

	if customer, ok := s.customers[order.CustomerID]; ok {
		view.Customer = &customer
	}

	for _, item := range order.Items {
		itemView := domain.OrderItemView{ID: item.ID, Quantity: item.Quantity}
		if shopItem, ok := s.shopItems[item.ShopItemID]; ok {
			shopItem.Categories = s.itemCategories(shopItem.ID)
			itemView.ShopItem = &shopItem
		}
		view.Items = append(view.Items, itemView)
	}

	return view
}

var _ domain.OrderRepository = (*orderRepository)(nil)
