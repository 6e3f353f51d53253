package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/minishop/internal/metrics"
	"github.com/vladislavdragonenkov/minishop/internal/service/catalog"
	"github.com/vladislavdragonenkov/minishop/internal/service/categories"
	"github.com/vladislavdragonenkov/minishop/internal/service/customers"
	"github.com/vladislavdragonenkov/minishop/internal/service/orders"
	"github.com/vladislavdragonenkov/minishop/internal/storage/memory"
	"github.com/vladislavdragonenkov/minishop/internal/storage/postgres"
)

// Dependencies содержит собранный граф зависимостей приложения.
type Dependencies struct {
	Customers  *customers.Service
	Categories *categories.Service
	Catalog    *catalog.Service
	Orders     *orders.Service
	Logger     *log.Entry

	pg       *postgres.Store // nil при in-memory хранилище
	producer *kafka.Producer // nil, если Kafka не настроен
}

// NewDependencies инициализирует хранилище, издателя событий и сервисы.
// При заданном PostgresDSN используется PostgreSQL с применением миграций
// на старте, иначе — in-memory хранилище для разработки и тестов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	var (
		customerRepo domain.CustomerRepository
		categoryRepo domain.CategoryRepository
		itemRepo     domain.ShopItemRepository
		orderRepo    domain.OrderRepository
	)

	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.pg = pg
		customerRepo = postgres.NewCustomerRepository(pg)
		categoryRepo = postgres.NewCategoryRepository(pg)
		itemRepo = postgres.NewShopItemRepository(pg)
		orderRepo = postgres.NewOrderRepository(pg)
		logger.Info("хранилище: postgresql")
	} else {
		store := memory.NewStore()
		customerRepo = store.Customers()
		categoryRepo = store.Categories()
		itemRepo = store.ShopItems()
		orderRepo = store.Orders()
		logger.Info("хранилище: in-memory")
	}

	// Инициализация Kafka producer (опционально)
	var events kafka.EventPublisher
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.producer = producer
			events = producer
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	}

	storeMetrics := metrics.NewStoreMetrics()

	deps.Customers = customers.New(customerRepo, logger.WithField("layer", "customers"), storeMetrics)
	deps.Categories = categories.New(categoryRepo, logger.WithField("layer", "categories"), storeMetrics)
	deps.Catalog = catalog.New(itemRepo, logger.WithField("layer", "catalog"), storeMetrics, events)
	deps.Orders = orders.New(orderRepo, logger.WithField("layer", "orders"), storeMetrics, events)

	return deps, nil
}

// Close освобождает внешние ресурсы в обратном порядке инициализации.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.Logger.Info("kafka producer closed")
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// Ping проверяет доступность хранилища. Для in-memory всегда успешен.
func (d *Dependencies) Ping(ctx context.Context) error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Ping(ctx)
}
