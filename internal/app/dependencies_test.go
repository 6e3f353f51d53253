package app

import (
	"context"
	"testing"
)

// С пустой конфигурацией граф собирается на in-memory хранилище без Kafka.
func TestNewDependencies_Memory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if deps.Customers == nil || deps.Categories == nil || deps.Catalog == nil || deps.Orders == nil {
		t.Fatal("all services must be initialized")
	}

	if err := deps.Ping(context.Background()); err != nil {
		t.Fatalf("memory storage ping must succeed, got %v", err)
	}
}

// Повторная инициализация не паникует на повторной регистрации метрик.
func TestNewDependencies_Twice(t *testing.T) {
	for i := 0; i < 2; i++ {
		deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
		if err != nil {
			t.Fatalf("unexpected error on init %d: %v", i, err)
		}
		deps.Close()
	}
}
