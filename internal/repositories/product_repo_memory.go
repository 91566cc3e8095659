package repositories

import (
	"context"
	"sort"
	"sync"

	"petstore/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// A single mutex makes every method atomic with respect to the others.
type MemoryProductRepository struct {
	products map[int64]models.Product
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]models.Product),
	}
}

// GetAll returns all products in ascending id order.
func (r *MemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.filter(ctx, func(models.Product) bool { return true })
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("get product", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// GetActiveInStock returns active products with stock, in ascending id order.
func (r *MemoryProductRepository) GetActiveInStock(ctx context.Context) ([]models.Product, error) {
	return r.filter(ctx, func(p models.Product) bool { return p.Active && p.Quantity > 0 })
}

// Create adds a new product under a fresh id.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return storageError("create product", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = *product
	return nil
}

// Update merges the supplied fields into an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	return r.mutate(ctx, "update product", id, func(p *models.Product) error {
		patch.Apply(p)
		return nil
	})
}

// Deactivate marks a product inactive.
func (r *MemoryProductRepository) Deactivate(ctx context.Context, id int64) (*models.Product, error) {
	return r.mutate(ctx, "deactivate product", id, func(p *models.Product) error {
		p.Active = false
		return nil
	})
}

// SetQuantity overwrites the stock level of a product.
func (r *MemoryProductRepository) SetQuantity(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	return r.mutate(ctx, "set product quantity", id, func(p *models.Product) error {
		p.Quantity = quantity
		return nil
	})
}

// Sell checks and decrements under the write lock.
func (r *MemoryProductRepository) Sell(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	return r.mutate(ctx, "sell product", id, func(p *models.Product) error {
		if !p.Active || p.Quantity < quantity {
			return &SellConflictError{Current: *p, Requested: quantity}
		}
		p.Quantity -= quantity
		return nil
	})
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// Ping always succeeds.
func (r *MemoryProductRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// mutate applies fn to a copy and stores it only when fn succeeds.
func (r *MemoryProductRepository) mutate(ctx context.Context, op string, id int64, fn func(*models.Product) error) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError(op, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&product); err != nil {
		return nil, err
	}
	r.products[id] = product
	return &product, nil
}

func (r *MemoryProductRepository) filter(ctx context.Context, keep func(models.Product) bool) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("list products", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}
