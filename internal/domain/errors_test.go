package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

func TestErrorClassifiers(t *testing.T) {
	validation := &domain.ValidationError{Field: "title", Reason: "is required"}
	notFound := &domain.NotFoundError{Entity: "customer", ID: "c-1"}
	conflict := &domain.ConflictError{Reason: "email already exists"}

	if !domain.IsValidation(validation) || domain.IsValidation(notFound) {
		t.Fatal("IsValidation misclassified error")
	}
	if !domain.IsNotFound(notFound) || domain.IsNotFound(conflict) {
		t.Fatal("IsNotFound misclassified error")
	}
	if !domain.IsConflict(conflict) || domain.IsConflict(validation) {
		t.Fatal("IsConflict misclassified error")
	}
}

// Классификаторы видят тип и через цепочку обёрток fmt.Errorf %w.
func TestErrorClassifiers_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", &domain.NotFoundError{Entity: "shop item", ID: "s-1"})
	if !domain.IsNotFound(wrapped) {
		t.Fatal("expected wrapped NotFoundError to be recognized")
	}
	if domain.IsNotFound(errors.New("plain")) {
		t.Fatal("plain error must not be recognized as NotFoundError")
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&domain.ValidationError{Field: "price", Reason: "must be non-negative"}, "price: must be non-negative"},
		{&domain.ValidationError{Reason: "bad input"}, "bad input"},
		{&domain.NotFoundError{Entity: "order", ID: "o-1"}, "order o-1 not found"},
		{&domain.NotFoundError{Entity: "order"}, "order not found"},
		{&domain.ConflictError{Reason: "email already exists"}, "email already exists"},
	}

	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
