package repositories

import (
	"context"
	"errors"

	"petstore/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products in ascending id order.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, storageError("get all products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := findProduct(r.db.WithContext(ctx), id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveInStock retrieves active products with at least one unit, in ascending id order.
func (r *GORMProductRepository) GetActiveInStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("active = ? AND quantity > ?", true, 0).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, storageError("get active products", err)
	}
	return products, nil
}

// Create inserts a new product and fills in its assigned ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(product).Error
	})
	if err != nil {
		return storageError("create product", err)
	}
	return nil
}

// Update writes only the fields present in patch and returns the full row.
func (r *GORMProductRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !patch.IsEmpty() {
			res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(patch.Columns())
			if res.Error != nil {
				return storageError("update product", res.Error)
			}
		}
		return findProduct(tx, id, &product)
	})
	if err != nil {
		return nil, passthrough("update product", err)
	}
	return &product, nil
}

// Deactivate sets active=false. Deactivating an inactive product is not an error.
func (r *GORMProductRepository) Deactivate(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).UpdateColumn("active", false)
		if res.Error != nil {
			return storageError("deactivate product", res.Error)
		}
		return findProduct(tx, id, &product)
	})
	if err != nil {
		return nil, passthrough("deactivate product", err)
	}
	return &product, nil
}

// SetQuantity overwrites the stock level of a product.
func (r *GORMProductRepository) SetQuantity(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).UpdateColumn("quantity", quantity)
		if res.Error != nil {
			return storageError("set product quantity", res.Error)
		}
		return findProduct(tx, id, &product)
	})
	if err != nil {
		return nil, passthrough("set product quantity", err)
	}
	return &product, nil
}

// Sell decrements stock with a single guarded UPDATE so the database
// serializes concurrent sells of the same row.
func (r *GORMProductRepository) Sell(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND active = ? AND quantity >= ?", id, true, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return storageError("sell product", res.Error)
		}
		if err := findProduct(tx, id, &product); err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return &SellConflictError{Current: product, Requested: quantity}
		}
		return nil
	})
	if err != nil {
		return nil, passthrough("sell product", err)
	}
	return &product, nil
}

// Count returns the number of product rows.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, storageError("count products", err)
	}
	return n, nil
}

// Ping checks that the database answers.
func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storageError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

func findProduct(db *gorm.DB, id int64, product *models.Product) error {
	if err := db.First(product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageError("get product", err)
	}
	return nil
}
