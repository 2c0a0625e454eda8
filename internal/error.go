package internal

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotPlaced    = errors.New("order is not in Placed status")
)

// ValidationError
// malformed or missing request fields; never retried as-is
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProductNotFoundError
// a line item referenced a product that does not exist in the catalog
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// StockError
// requested quantity exceeds what the catalog currently has
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("out of stock - %s, only %d item(s) available", e.ProductName, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
