package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/minishop/internal/metrics"
)

const entity = "shop_item"

// Service реализует операции над товарами каталога. Список категорий
// товара меняется по схеме replace-all в одной атомарной операции
// хранилища; каждая категория обязана существовать, иначе мутация
// отклоняется целиком с NotFoundError по первому отсутствующему id.
type Service struct {
	repo    domain.ShopItemRepository
	logger  *log.Entry
	metrics *metrics.StoreMetrics
	events  kafka.EventPublisher // опциональный издатель событий каталога
}

// New создаёт рабочий экземпляр сервиса. metrics и events могут быть nil.
func New(repo domain.ShopItemRepository, logger *log.Entry, m *metrics.StoreMetrics, events kafka.EventPublisher) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
		events:  events,
	}
}

// Create добавляет товар и привязывает его к переданным категориям.
func (s *Service) Create(ctx context.Context, in domain.ShopItemInput) (domain.ShopItem, error) {
	start := time.Now()
	defer s.observe("create", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.ShopItem{}, err
	}

	item := domain.ShopItem{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
	}

	created, err := s.repo.Create(ctx, item, in.CategoryIDs)
	if err != nil {
		s.noteStorageFailure("create", item.ID, err)
		return domain.ShopItem{}, err
	}

	s.recordMutation("create")
	s.logger.WithField("shop_item_id", created.ID).Info("товар создан")
	return created, nil
}

// Get возвращает товар с заполненным списком категорий.
func (s *Service) Get(ctx context.Context, id string) (domain.ShopItem, error) {
	start := time.Now()
	defer s.observe("get", start)
	return s.repo.Get(ctx, id)
}

// List возвращает все товары в порядке создания.
func (s *Service) List(ctx context.Context) ([]domain.ShopItem, error) {
	start := time.Now()
	defer s.observe("list", start)
	return s.repo.List(ctx)
}

// Update перезаписывает поля товара и полный набор его категорий.
// После фиксации публикуется событие shop_item.updated.
func (s *Service) Update(ctx context.Context, id string, in domain.ShopItemInput) (domain.ShopItem, error) {
	start := time.Now()
	defer s.observe("update", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.ShopItem{}, err
	}

	item := domain.ShopItem{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
	}

	updated, err := s.repo.Update(ctx, item, in.CategoryIDs)
	if err != nil {
		s.noteStorageFailure("update", id, err)
		return domain.ShopItem{}, err
	}

	s.recordMutation("update")
	s.publishUpdated(updated.ID)
	return updated, nil
}

// Delete удаляет товар, его связи с категориями и ссылающиеся на него
// позиции заказов.
func (s *Service) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer s.observe("delete", start)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordMutation("delete")
	s.logger.WithField("shop_item_id", id).Info("товар удалён")
	return nil
}

// publishUpdated отправляет событие каталога. Ошибка публикации не
// откатывает уже зафиксированную мутацию, только логируется.
func (s *Service) publishUpdated(itemID string) {
	if s.events == nil {
		return
	}
	event := kafka.NewCatalogEvent(kafka.EventTypeShopItemUpdated, itemID)
	if err := s.events.PublishEvent(kafka.TopicCatalogEvents, itemID, event); err != nil {
		s.logger.WithError(err).WithField("shop_item_id", itemID).Error("не удалось опубликовать событие каталога")
	}
}

func (s *Service) noteStorageFailure(op, id string, err error) {
	if domain.IsNotFound(err) && s.metrics != nil {
		s.metrics.RecordReferenceMissing(entity)
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"shop_item_id": id,
		"op":           op,
	}).Warn("мутация товара отклонена хранилищем")
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
