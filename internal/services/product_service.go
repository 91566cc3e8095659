package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petstore/internal/models"
	"petstore/internal/repositories"

	"go.uber.org/zap"
)

// ProductService handles business logic related to products.
// It keeps no product state between calls; every decision is made by the
// repository against the current row.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(id, err)
	}
	return product, nil
}

// CreateProduct inserts a product and returns it with its assigned ID.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := input.Product()
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, translate(product.ID, err)
	}
	s.logger.Info("product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	s.publish(EventProductCreated, product, 0)
	return &product, nil
}

// UpdateProduct applies the supplied fields of patch to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(id, err)
	}
	s.publish(EventProductUpdated, *product, 0)
	return product, nil
}

// DeactivateProduct marks a product unsellable. The row is kept.
func (s *ProductService) DeactivateProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, translate(id, err)
	}
	s.logger.Info("product deactivated", zap.Int64("product_id", id))
	s.publish(EventProductDeactivated, *product, 0)
	return product, nil
}

// RestockProduct sets the stock level of a product.
func (s *ProductService) RestockProduct(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("restock to %d units: %w", quantity, ErrInvalidQuantity)
	}
	product, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, translate(id, err)
	}
	s.publish(EventProductRestocked, *product, quantity)
	return product, nil
}

// SellProduct removes quantity units from stock. The activation and stock
// checks are part of the same conditional write as the decrement.
func (s *ProductService) SellProduct(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("sell %d units: %w", quantity, ErrInvalidQuantity)
	}
	product, err := s.repo.Sell(ctx, id, quantity)
	if err != nil {
		var conflict *repositories.SellConflictError
		if errors.As(err, &conflict) {
			return nil, sellRejection(conflict)
		}
		return nil, translate(id, err)
	}
	s.logger.Info("product sold",
		zap.Int64("product_id", id),
		zap.Int("sold", quantity),
		zap.Int("remaining", product.Quantity),
	)
	s.publish(EventProductSold, *product, quantity)
	return product, nil
}

func sellRejection(conflict *repositories.SellConflictError) error {
	if !conflict.Current.Active {
		return fmt.Errorf("product with ID %d: %w", conflict.Current.ID, ErrProductNotActive)
	}
	return &InsufficientStockError{
		ProductID: conflict.Current.ID,
		Requested: conflict.Requested,
		Available: conflict.Current.Quantity,
	}
}

// translate maps repository not-found to the domain error; storage errors pass unchanged.
func translate(id int64, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return err
}

// publish is best effort: the change is already committed.
func (s *ProductService) publish(eventType string, product models.Product, quantity int) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(ProductEvent{
		Type:       eventType,
		Product:    product,
		Quantity:   quantity,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to marshal product event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.events.Publish(eventType, body); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
	}
}
