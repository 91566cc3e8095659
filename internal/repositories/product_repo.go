package repositories

import (
	"context"

	"petstore/internal/models"
)

// ProductRepository defines the interface for product data access.
// Every mutating call runs in its own transaction.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetActiveInStock(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	Deactivate(ctx context.Context, id int64) (*models.Product, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*models.Product, error)
	// Sell decrements quantity only if the product is active and holds at
	// least quantity units. A failed predicate returns *SellConflictError.
	Sell(ctx context.Context, id int64, quantity int) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
