package memory

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type shopItemRepository struct {
	store *Store
}

func (r *shopItemRepository) Create(_ context.Context, item domain.ShopItem, categoryIDs []string) (domain.ShopItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategoriesExist(categoryIDs); err != nil {
		return domain.ShopItem{}, err
	}

	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Categories = nil
	s.shopItems[item.ID] = item
	s.links[item.ID] = append([]string(nil), categoryIDs...)

	item.Categories = s.itemCategories(item.ID)
	return item, nil
}

func (r *shopItemRepository) Get(_ context.Context, id string) (domain.ShopItem, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.shopItems[id]
	if !ok {
		return domain.ShopItem{}, &domain.NotFoundError{Entity: "shop item", ID: id}
	}
	item.Categories = s.itemCategories(id)

	return item, nil
}

func (r *shopItemRepository) List(_ context.Context) ([]domain.ShopItem, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.ShopItem, 0, len(s.shopItems))
	for _, item := range s.shopItems {
		item.Categories = s.itemCategories(item.ID)
		items = append(items, item)
	}
	sortByCreation(items,
		func(i domain.ShopItem) time.Time { return i.CreatedAt },
		func(i domain.ShopItem) string { return i.ID })

	return items, nil
}

func (r *shopItemRepository) Update(_ context.Context, item domain.ShopItem, categoryIDs []string) (domain.ShopItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.shopItems[item.ID]
	if !ok {
		return domain.ShopItem{}, &domain.NotFoundError{Entity: "shop item", ID: item.ID}
	}

	if err := s.checkCategoriesExist(categoryIDs); err != nil {
		return domain.ShopItem{}, err
	}

	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now()
	item.Categories = nil
	s.shopItems[item.ID] = item

	// Replace-all: прежний набор связей выбрасывается целиком.
	s.links[item.ID] = append([]string(nil), categoryIDs...)

	item.Categories = s.itemCategories(item.ID)
	return item, nil
}

func (r *shopItemRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shopItems[id]; !ok {
		return &domain.NotFoundError{Entity: "shop item", ID: id}
	}
	delete(s.shopItems, id)
	delete(s.links, id)

	// Каскад: позиции заказов, ссылающиеся на товар, удаляются.
	for orderID, order := range s.orders {
		kept := make([]domain.OrderItem, 0, len(order.Items))
		for _, orderItem := range order.Items {
			if orderItem.ShopItemID != id {
				kept = append(kept, orderItem)
			}
		}
		if len(kept) != len(order.Items) {
			order.Items = kept
			s.orders[orderID] = order
		}
	}

	return nil
}

// checkCategoriesExist проверяет категории в порядке запроса, чтобы
// ошибка назвала первый отсутствующий id. Вызывается под мьютексом.
func (s *Store) checkCategoriesExist(categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		if _, ok := s.categories[categoryID]; !ok {
			return &domain.NotFoundError{Entity: "category", ID: categoryID}
		}
	}
	return nil
}

var _ domain.ShopItemRepository = (*shopItemRepository)(nil)
