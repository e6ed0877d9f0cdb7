package customer

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("customer: not found")
	ErrDuplicateEmail = errors.New("customer: email already exists")
	ErrReferenced     = errors.New("customer: referenced by existing orders")
	ErrInvalidName    = errors.New("customer: name is required")
	ErrInvalidEmail   = errors.New("customer: email is required")
)

type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

func New(id, name, email, phone, address string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidEmail
	}
	return &Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
