package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrUnknownMedicine   = errors.New("unknown medicine")
	ErrUnknownCustomer   = errors.New("unknown customer")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownSupplier   = errors.New("unknown supplier")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports the medicine whose stock could not cover an order line.
type InsufficientStockError struct {
	MedicineID int64
	Requested  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for medicine %d (requested %d)", e.MedicineID, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
