package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

// Store — in-memory хранилище для локальной разработки и тестов.
// Все таблицы живут под одним мьютексом, поэтому каждая мутация агрегата
// атомарна по отношению к конкурентным читателям и писателям, а
// replace-all одного заказа сериализуется сам собой.
type Store struct {
	mu sync.RWMutex

	customers  map[string]domain.Customer
	categories map[string]domain.Category
	shopItems  map[string]domain.ShopItem
	// links хранит упорядоченный список категорий товара.
	links  map[string][]string
	orders map[string]domain.Order
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		customers:  make(map[string]domain.Customer),
		categories: make(map[string]domain.Category),
		shopItems:  make(map[string]domain.ShopItem),
		links:      make(map[string][]string),
		orders:     make(map[string]domain.Order),
	}
}

// Customers возвращает репозиторий клиентов поверх этого хранилища.
func (s *Store) Customers() domain.CustomerRepository {
	return &customerRepository{store: s}
}

// Categories возвращает репозиторий категорий поверх этого хранилища.
func (s *Store) Categories() domain.CategoryRepository {
	return &categoryRepository{store: s}
}

// ShopItems возвращает репозиторий товаров поверх этого хранилища.
func (s *Store) ShopItems() domain.ShopItemRepository {
	return &shopItemRepository{store: s}
}

// Orders возвращает репозиторий заказов поверх этого хранилища.
func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{store: s}
}

func (s *Store) now() time.Time {
	return time.Now().UTC()
}

// itemCategories собирает категории товара в порядке связей.
// Вызывается под мьютексом.
func (s *Store) itemCategories(itemID string) []domain.Category {
	categories := make([]domain.Category, 0, len(s.links[itemID]))
	for _, categoryID := range s.links[itemID] {
		if category, ok := s.categories[categoryID]; ok {
			categories = append(categories, category)
		}
	}
	return categories
}

// sortByCreation упорядочивает выдачу так же, как SQL-реализация:
// по времени создания, затем по id.
func sortByCreation[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		if !createdAt(items[i]).Equal(createdAt(items[j])) {
			return createdAt(items[i]).Before(createdAt(items[j]))
		}
		return id(items[i]) < id(items[j])
	})
}
