package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/minishop/internal/metrics"
)

const entity = "order"

// Service реализует операции над агрегатом заказа. Мутация проходит три
// стадии: структурная валидация входа, атомарная запись в хранилище с
// проверкой ссылок внутри той же транзакции, затем публикация события.
// Ответ мутации — собранное представление заказа, перечитанное из
// хранилища, а не эхо входных данных.
type Service struct {
	repo    domain.OrderRepository
	logger  *log.Entry
	metrics *metrics.StoreMetrics
	events  kafka.EventPublisher // опциональный издатель событий заказа
}

// New создаёт рабочий экземпляр сервиса. metrics и events могут быть nil.
func New(repo domain.OrderRepository, logger *log.Entry, m *metrics.StoreMetrics, events kafka.EventPublisher) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
		events:  events,
	}
}

// Create создаёт заказ вместе со всеми позициями как единое целое.
// Если клиент или любой из товаров не существует, не фиксируется ничего.
func (s *Service) Create(ctx context.Context, in domain.OrderInput) (domain.OrderView, error) {
	start := time.Now()
	defer s.observe("create", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.OrderView{}, err
	}

	order := s.buildOrder(uuid.NewString(), in)

	view, err := s.repo.Create(ctx, order)
	if err != nil {
		s.noteStorageFailure("create", order.ID, err)
		return domain.OrderView{}, err
	}

	s.recordMutation("create")
	s.publish(kafka.EventTypeOrderCreated, view.ID, view.CustomerID)
	s.logger.WithFields(log.Fields{
		"order_id": view.ID,
		"items":    len(view.Items),
	}).Info("заказ создан")
	return view, nil
}

// Update обновляет заказ по схеме replace-all: прежние позиции удаляются,
// новый список вставляется целиком с новыми идентификаторами. Обновление
// атомарно наравне с созданием.
func (s *Service) Update(ctx context.Context, id string, in domain.OrderInput) (domain.OrderView, error) {
	start := time.Now()
	defer s.observe("update", start)

	if err := in.Validate(); err != nil {
		s.rejectValidation(err)
		return domain.OrderView{}, err
	}

	order := s.buildOrder(id, in)

	view, err := s.repo.Replace(ctx, order)
	if err != nil {
		s.noteStorageFailure("update", id, err)
		return domain.OrderView{}, err
	}

	s.recordMutation("update")
	s.publish(kafka.EventTypeOrderUpdated, view.ID, view.CustomerID)
	s.logger.WithFields(log.Fields{
		"order_id": view.ID,
		"items":    len(view.Items),
	}).Info("заказ обновлён")
	return view, nil
}

// Delete удаляет заказ вместе с позициями.
func (s *Service) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer s.observe("delete", start)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordMutation("delete")
	s.publish(kafka.EventTypeOrderDeleted, id, "")
	s.logger.WithField("order_id", id).Info("заказ удалён")
	return nil
}

// Get возвращает собранное представление заказа: клиент, позиции,
// товары и их категории.
func (s *Service) Get(ctx context.Context, id string) (domain.OrderView, error) {
	start := time.Now()
	defer s.observe("get", start)
	return s.repo.GetView(ctx, id)
}

// List возвращает представления всех заказов в порядке создания.
func (s *Service) List(ctx context.Context) ([]domain.OrderView, error) {
	start := time.Now()
	defer s.observe("list", start)
	return s.repo.ListViews(ctx)
}

// buildOrder разворачивает вход в агрегат с новыми идентификаторами
// позиций. Дубли товара во входе сохраняются как отдельные позиции.
func (s *Service) buildOrder(id string, in domain.OrderInput) domain.Order {
	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    id,
			ShopItemID: item.ShopItemID,
			Quantity:   item.Quantity,
		})
	}
	return domain.Order{
		ID:         id,
		CustomerID: in.CustomerID,
		Items:      items,
	}
}

// publish отправляет событие жизненного цикла заказа. Ошибка публикации
// не откатывает уже зафиксированную мутацию, только логируется.
func (s *Service) publish(eventType kafka.EventType, orderID, customerID string) {
	if s.events == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, orderID, customerID)
	if err := s.events.PublishEvent(kafka.TopicOrderEvents, orderID, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"event_type": eventType,
		}).Error("не удалось опубликовать событие заказа")
	}
}

func (s *Service) noteStorageFailure(op, id string, err error) {
	if domain.IsNotFound(err) && s.metrics != nil {
		s.metrics.RecordReferenceMissing(entity)
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"order_id": id,
		"op":       op,
	}).Warn("мутация заказа отклонена хранилищем")
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
