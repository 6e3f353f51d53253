package domain

import "time"

// Category — категория товаров каталога.
type Category struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryInput — данные создания/обновления категории.
type CategoryInput struct {
	Title       string
	Description string
}

// Validate возвращает первое нарушенное правило или nil.
func (in CategoryInput) Validate() error {
	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return nil
}
