package memory

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type categoryRepository struct {
	store *Store
}

func (r *categoryRepository) Create(_ context.Context, category domain.Category) (domain.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = category

	return category, nil
}

func (r *categoryRepository) Get(_ context.Context, id string) (domain.Category, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return domain.Category{}, &domain.NotFoundError{Entity: "category", ID: id}
	}
	return category, nil
}

func (r *categoryRepository) List(_ context.Context) ([]domain.Category, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, category := range s.categories {
		categories = append(categories, category)
	}
	sortByCreation(categories,
		func(c domain.Category) time.Time { return c.CreatedAt },
		func(c domain.Category) string { return c.ID })

	return categories, nil
}

func (r *categoryRepository) Update(_ context.Context, category domain.Category) (domain.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.categories[category.ID]
	if !ok {
		return domain.Category{}, &domain.NotFoundError{Entity: "category", ID: category.ID}
	}

	category.CreatedAt = current.CreatedAt
	category.UpdatedAt = s.now()
	s.categories[category.ID] = category

	return category, nil
}

func (r *categoryRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return &domain.NotFoundError{Entity: "category", ID: id}
	}
	delete(s.categories, id)

	// Каскад: категория исчезает из связей всех товаров.
	for itemID, categoryIDs := range s.links {
		kept := categoryIDs[:0]
		for _, categoryID := range categoryIDs {
			if categoryID != id {
				kept = append(kept, categoryID)
			}
		}
		s.links[itemID] = kept
	}

	return nil
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
