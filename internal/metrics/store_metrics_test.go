package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewStoreMetrics(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newStoreMetricsWithRegisterer should not return nil")
	}
	if metrics.mutations == nil {
		t.Error("mutations counter vec should not be nil")
	}
	if metrics.validationRejected == nil {
		t.Error("validationRejected counter vec should not be nil")
	}
	if metrics.referenceMissing == nil {
		t.Error("referenceMissing counter vec should not be nil")
	}
	if metrics.opDuration == nil {
		t.Error("opDuration histogram vec should not be nil")
	}
}

// Повторная регистрация в одном регистраторе переиспользует коллекторы,
// а не паникует.
func TestNewStoreMetrics_Reregister(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newStoreMetricsWithRegisterer(registry)
	second := newStoreMetricsWithRegisterer(registry)

	if first.mutations != second.mutations {
		t.Error("expected mutations collector to be reused")
	}
	if first.opDuration != second.opDuration {
		t.Error("expected opDuration collector to be reused")
	}
}

func TestRecordMutation(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordMutation("order", "create")
	metrics.RecordMutation("order", "create")
	metrics.RecordMutation("order", "delete")

	if got := counterValue(t, metrics.mutations, "order", "create"); got != 2 {
		t.Fatalf("expected 2 create mutations, got %v", got)
	}
	if got := counterValue(t, metrics.mutations, "order", "delete"); got != 1 {
		t.Fatalf("expected 1 delete mutation, got %v", got)
	}
}

func TestRecordValidationRejected(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordValidationRejected("customer")
	metrics.RecordReferenceMissing("order")

	var metric dto.Metric
	if err := metrics.validationRejected.WithLabelValues("customer").Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.GetCounter().GetValue() != 1 {
		t.Fatalf("expected 1 rejected validation, got %v", metric.GetCounter().GetValue())
	}
}

func TestObserveOperation(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.ObserveOperation("order", "create", 15*time.Millisecond)
	metrics.ObserveOperation("order", "create", 30*time.Millisecond)

	observer, err := metrics.opDuration.GetMetricWithLabelValues("order", "create")
	if err != nil {
		t.Fatalf("get histogram: %v", err)
	}
	var metric dto.Metric
	if err := observer.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.GetHistogram().GetSampleCount() != 2 {
		t.Fatalf("expected 2 observations, got %v", metric.GetHistogram().GetSampleCount())
	}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var metric dto.Metric
	if err := vec.WithLabelValues(labels...).Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
