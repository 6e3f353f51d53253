package memory

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type customerRepository struct {
	store *Store
}

func (r *customerRepository) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.Email == customer.Email {
			return domain.Customer{}, &domain.ConflictError{Reason: "email already exists"}
		}
	}

	now := s.now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer

	return customer, nil
}

func (r *customerRepository) Get(_ context.Context, id string) (domain.Customer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	return customer, nil
}

func (r *customerRepository) List(_ context.Context) ([]domain.Customer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		customers = append(customers, customer)
	}
	sortByCreation(customers,
		func(c domain.Customer) time.Time { return c.CreatedAt },
		func(c domain.Customer) string { return c.ID })

	return customers, nil
}

func (r *customerRepository) Update(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.customers[customer.ID]
	if !ok {
		return domain.Customer{}, &domain.NotFoundError{Entity: "customer", ID: customer.ID}
	}

	for id, existing := range s.customers {
		if id != customer.ID && existing.Email == customer.Email {
			return domain.Customer{}, &domain.ConflictError{Reason: "email already exists"}
		}
	}

	customer.CreatedAt = current.CreatedAt
	customer.UpdatedAt = s.now()
	s.customers[customer.ID] = customer

	return customer, nil
}

func (r *customerRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return &domain.NotFoundError{Entity: "customer", ID: id}
	}
	delete(s.customers, id)

	// Каскад: заказы клиента удаляются вместе с позициями.
	for orderID, order := range s.orders {
		if order.CustomerID == id {
			delete(s.orders, orderID)
		}
	}

	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
