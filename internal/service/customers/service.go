package customers

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/metrics"
)

const entity = "customer"

// Service реализует операции над клиентами: структурная валидация входа,
// затем обращение к хранилищу. Идентификаторы выдаёт сервис, временные
// метки — хранилище.
type Service struct {
	repo    domain.CustomerRepository
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// New создаёт рабочий экземпляр сервиса. metrics может быть nil (для тестов).
func New(repo domain.CustomerRepository, logger *log.Entry, m *metrics.StoreMetrics) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customers")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Create регистрирует нового клиента. Повторный email — ConflictError.
func (s *Service) Create(ctx context.Context, in domain.CustomerInput) (domain.Customer, error) {
	start := time.Now()
	defer s.observe("create", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Surname: in.Surname,
		Email:   in.Email,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		s.logger.WithError(err).WithField("email", in.Email).Warn("не удалось создать клиента")
		return domain.Customer{}, err
	}

	s.recordMutation("create")
	s.logger.WithField("customer_id", created.ID).Info("клиент создан")
	return created, nil
}

// Get возвращает клиента по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Customer, error) {
	start := time.Now()
	defer s.observe("get", start)
	return s.repo.Get(ctx, id)
}

// List возвращает всех клиентов в порядке создания.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	start := time.Now()
	defer s.observe("list", start)
	return s.repo.List(ctx)
}

// Update перезаписывает контактные поля клиента.
func (s *Service) Update(ctx context.Context, id string, in domain.CustomerInput) (domain.Customer, error) {
	start := time.Now()
	defer s.observe("update", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		ID:      id,
		Name:    in.Name,
		Surname: in.Surname,
		Email:   in.Email,
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", id).Warn("не удалось обновить клиента")
		return domain.Customer{}, err
	}

	s.recordMutation("update")
	return updated, nil
}

// Delete удаляет клиента вместе с его заказами.
func (s *Service) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer s.observe("delete", start)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordMutation("delete")
	s.logger.WithField("customer_id", id).Info("клиент удалён")
	return nil
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(entity, op, time.Since(start))
	}
}

func (s *Service) recordMutation(op string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(entity, op)
	}
}

func (s *Service) rejectValidation(err error) {
	if s.metrics != nil {
		s.metrics.RecordValidationRejected(entity)
	}
	s.logger.WithError(err).Debug("вход не прошёл валидацию")
}
