package orders_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/minishop/internal/service/catalog"
	"github.com/vladislavdragonenkov/minishop/internal/service/customers"
	"github.com/vladislavdragonenkov/minishop/internal/service/orders"
	"github.com/vladislavdragonenkov/minishop/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

// fakePublisher собирает опубликованные события вместо отправки в Kafka.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	event interface{}
}

func (p *fakePublisher) PublishEvent(topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fixture struct {
	store     *memory.Store
	customers *customers.Service
	catalog   *catalog.Service
	orders    *orders.Service
	publisher *fakePublisher
}

func newFixture() *fixture {
	store := memory.NewStore()
	logger := loggerForTests()
	publisher := &fakePublisher{}
	return &fixture{
		store:     store,
		customers: customers.New(store.Customers(), logger, nil),
		catalog:   catalog.New(store.ShopItems(), logger, nil, publisher),
		orders:    orders.New(store.Orders(), logger, nil, publisher),
		publisher: publisher,
	}
}

// Сквозной сценарий: клиент и товар, заказ с количеством 3, обновление на
// количество 5, удаление, после которого заказ не читается.
func TestOrderLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CustomerInput{
		Name:    "Ann",
		Surname: "Lee",
		Email:   "ann@example.com",
	})
	require.NoError(t, err)

	item, err := f.catalog.Create(ctx, domain.ShopItemInput{Title: "Pen", Price: 1.50})
	require.NoError(t, err)

	created, err := f.orders.Create(ctx, domain.OrderInput{
		CustomerID: customer.ID,
		Items:      []domain.OrderItemInput{{ShopItemID: item.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.Customer)
	require.Equal(t, "Ann", created.Customer.Name)
	require.Len(t, created.Items, 1)
	require.EqualValues(t, 3, created.Items[0].Quantity)
	require.NotNil(t, created.Items[0].ShopItem)
	require.Equal(t, "Pen", created.Items[0].ShopItem.Title)

	firstItemID := created.Items[0].ID

	updated, err := f.orders.Update(ctx, created.ID, domain.OrderInput{
		CustomerID: customer.ID,
		Items:      []domain.OrderItemInput{{ShopItemID: item.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Len(t, updated.Items, 1)
	require.EqualValues(t, 5, updated.Items[0].Quantity)
	// Replace-all: позиция пересоздаётся с новым идентификатором.
	require.NotEqual(t, firstItemID, updated.Items[0].ID)
	require.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, f.orders.Delete(ctx, created.ID))

	_, err = f.orders.Get(ctx, created.ID)
	require.True(t, domain.IsNotFound(err))

	events := f.publisher.published()
	require.Len(t, events, 3)
	for _, e := range events {
		require.Equal(t, kafka.TopicOrderEvents, e.topic)
		require.Equal(t, created.ID, e.key)
	}
	require.Equal(t, kafka.EventTypeOrderCreated, events[0].event.(kafka.OrderEvent).EventType)
	require.Equal(t, kafka.EventTypeOrderUpdated, events[1].event.(kafka.OrderEvent).EventType)
	require.Equal(t, kafka.EventTypeOrderDeleted, events[2].event.(kafka.OrderEvent).EventType)
}

func TestOrderCreate_ValidationBeforeStorage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []domain.OrderInput{
		{},
		{CustomerID: "c-1"},
		{CustomerID: "c-1", Items: []domain.OrderItemInput{{Quantity: 1}}},
		{CustomerID: "c-1", Items: []domain.OrderItemInput{{ShopItemID: "s-1", Quantity: 0}}},
	}

	for _, in := range cases {
		_, err := f.orders.Create(ctx, in)
		require.True(t, domain.IsValidation(err), "input %+v", in)
	}

	// Ни одна из попыток не опубликовала событие и не создала заказ.
	require.Empty(t, f.publisher.published())
	views, err := f.orders.List(ctx)
	require.NoError(t, err)
	require.Empty(t, views)
}

func TestOrderCreate_UnknownReferencesRejectWhole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CustomerInput{
		Name:    "Ann",
		Surname: "Lee",
		Email:   "ann@example.com",
	})
	require.NoError(t, err)

	item, err := f.catalog.Create(ctx, domain.ShopItemInput{Title: "Pen", Price: 1.50})
	require.NoError(t, err)

	// Неизвестный клиент.
	_, err = f.orders.Create(ctx, domain.OrderInput{
		CustomerID: "no-such-customer",
		Items:      []domain.OrderItemInput{{ShopItemID: item.ID, Quantity: 1}},
	})
	require.True(t, domain.IsNotFound(err))

	// Один корректный товар и один неизвестный: агрегат отклоняется целиком.
	_, err = f.orders.Create(ctx, domain.OrderInput{
		CustomerID: customer.ID,
		Items: []domain.OrderItemInput{
			{ShopItemID: item.ID, Quantity: 1},
			{ShopItemID: "no-such-item", Quantity: 2},
		},
	})
	require.True(t, domain.IsNotFound(err))

	views, err := f.orders.List(ctx)
	require.NoError(t, err)
	require.Empty(t, views, "failed mutation must not leave a partial order")
	require.Empty(t, f.publisher.published())
}

// Дубли одного товара не схлопываются: каждая строка входа — отдельная позиция.
func TestOrderCreate_DuplicateItemsKept(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CustomerInput{
		Name:    "Ann",
		Surname: "Lee",
		Email:   "ann@example.com",
	})
	require.NoError(t, err)
	item, err := f.catalog.Create(ctx, domain.ShopItemInput{Title: "Pen", Price: 1.50})
	require.NoError(t, err)

	view, err := f.orders.Create(ctx, domain.OrderInput{
		CustomerID: customer.ID,
		Items: []domain.OrderItemInput{
			{ShopItemID: item.ID, Quantity: 1},
			{ShopItemID: item.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.NotEqual(t, view.Items[0].ID, view.Items[1].ID)
}

func TestOrderDelete_CustomerCascade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CustomerInput{
		Name:    "Ann",
		Surname: "Lee",
		Email:   "ann@example.com",
	})
	require.NoError(t, err)
	item, err := f.catalog.Create(ctx, domain.ShopItemInput{Title: "Pen", Price: 1.50})
	require.NoError(t, err)

	view, err := f.orders.Create(ctx, domain.OrderInput{
		CustomerID: customer.ID,
		Items:      []domain.OrderItemInput{{ShopItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.customers.Delete(ctx, customer.ID))

	_, err = f.orders.Get(ctx, view.ID)
	require.True(t, domain.IsNotFound(err), "customer delete must cascade to orders")
}

func TestOrderDelete_NotFound(t *testing.T) {
	f := newFixture()
	err := f.orders.Delete(context.Background(), "no-such-order")
	require.True(t, domain.IsNotFound(err))
	require.Empty(t, f.publisher.published(), "failed delete must not publish an event")
}
