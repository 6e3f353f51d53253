package categories

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/metrics"
)

const entity = "category"

// Service реализует операции над категориями товаров.
type Service struct {
	repo    domain.CategoryRepository
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// New создаёт рабочий экземпляр сервиса. metrics может быть nil (для тестов).
func New(repo domain.CategoryRepository, logger *log.Entry, m *metrics.StoreMetrics) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "categories")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Create добавляет новую категорию.
func (s *Service) Create(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	start := time.Now()
	defer s.observe("create", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.Category{}, err
	}

	category := domain.Category{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		s.logger.WithError(err).Warn("не удалось создать категорию")
		return domain.Category{}, err
	}

	s.recordMutation("create")
	s.logger.WithField("category_id", created.ID).Info("категория создана")
	return created, nil
}

// Get возвращает категорию по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Category, error) {
	start := time.Now()
	defer s.observe("get", start)
	return s.repo.Get(ctx, id)
}

// List возвращает все категории в порядке создания.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	start := time.Now()
	defer s.observe("list", start)
	return s.repo.List(ctx)
}

// Update перезаписывает поля категории.
func (s *Service) Update(ctx context.Context, id string, in domain.CategoryInput) (domain.Category, error) {
	start := time.Now()
	defer s.observe("update", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.Category{}, err
	}

	category := domain.Category{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		s.logger.WithError(err).WithField("category_id", id).Warn("не удалось обновить категорию")
		return domain.Category{}, err
	}

	s.recordMutation("update")
	return updated, nil
}

// Delete удаляет категорию. Товары, ссылавшиеся на неё, остаются, связь
// просто исчезает из их списка категорий.
func (s *Service) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer s.observe("delete", start)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordMutation("delete")
	s.logger.WithField("category_id", id).Info("категория удалена")
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
