package domain

import "time"

// Customer — покупатель. Email уникален в рамках магазина.
type Customer struct {
	ID        string
	Name      string
	Surname   string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerInput — данные создания/обновления клиента.
type CustomerInput struct {
	Name    string
	Surname string
	Email   string
}

// Validate возвращает первое нарушенное правило или nil.
func (in CustomerInput) Validate() error {
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Surname == "" {
		return &ValidationError{Field: "surname", Reason: "is required"}
	}
	if in.Email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	return nil
}
