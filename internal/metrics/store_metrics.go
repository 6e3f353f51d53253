package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики операций над сущностями магазина.
type StoreMetrics struct {
	// Счётчики мутаций и отклонённых запросов
	mutations          *prometheus.CounterVec
	validationRejected *prometheus.CounterVec
	referenceMissing   *prometheus.CounterVec

	// Гистограмма времени выполнения операций
	opDuration *prometheus.HistogramVec
}

// NewStoreMetrics создаёт метрики в default-регистраторе.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "minishop_mutations_total",
			Help: "Total number of committed entity mutations",
		}, []string{"entity", "op"}),
		validationRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "minishop_validation_rejected_total",
			Help: "Total number of requests rejected by input validation",
		}, []string{"entity"}),
		referenceMissing: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "minishop_reference_missing_total",
			Help: "Total number of mutations rejected due to a missing referenced entity",
		}, []string{"entity"}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "minishop_operation_duration_seconds",
			Help:    "Duration of service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"entity", "op"}),
	}
}

// RecordMutation увеличивает счётчик зафиксированных мутаций.
func (m *StoreMetrics) RecordMutation(entity, op string) {
	m.mutations.WithLabelValues(entity, op).Inc()
}

// RecordValidationRejected увеличивает счётчик отклонённых валидацией запросов.
func (m *StoreMetrics) RecordValidationRejected(entity string) {
	m.validationRejected.WithLabelValues(entity).Inc()
}

// RecordReferenceMissing увеличивает счётчик мутаций с отсутствующей ссылкой.
func (m *StoreMetrics) RecordReferenceMissing(entity string) {
	m.referenceMissing.WithLabelValues(entity).Inc()
}

// ObserveOperation записывает время выполнения операции.
func (m *StoreMetrics) ObserveOperation(entity, op string, duration time.Duration) {
	m.opDuration.WithLabelValues(entity, op).Observe(duration.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
