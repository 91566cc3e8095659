package services

import (
	"errors"
	"fmt"
)

// Domain outcomes returned to the HTTP layer.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductNotActive = errors.New("product is not active")
	ErrNoActiveProducts = errors.New("no active products in stock")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)

// InsufficientStockError is returned when a sell asks for more than is left.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product with ID %d has only %d left (requested %d)", e.ProductID, e.Available, e.Requested)
}
