package app

import (
	"context"
	"fmt"

	"petstore/internal/models"
	"petstore/internal/repositories"

	"go.uber.org/zap"
)

func demoProducts() []models.Product {
	return []models.Product{
		{Name: "Senior Dog Kibble", Description: "Dry food with glucosamine for dogs over 8 years old", Quantity: 20, Price: 34.99, Active: true},
		{Name: "Puppy Starter Pack", Description: "Small-bite kibble for growing puppies", Quantity: 15, Price: 24.50, Active: true},
		{Name: "Indoor Cat Formula", Description: "Hairball control food for indoor cats", Quantity: 30, Price: 19.99, Active: true},
		{Name: "Salmon Cat Treats", Description: "Crunchy salmon treats for cats", Quantity: 50, Price: 4.25, Active: true},
	}
}

// SeedProducts inserts demo products when the catalog is empty.
// It reports how many rows were inserted.
func SeedProducts(ctx context.Context, repo repositories.ProductRepository, logger *zap.Logger) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if n > 0 {
		logger.Info("catalog already populated, skipping seed", zap.Int64("products", n))
		return 0, nil
	}

	products := demoProducts()
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		logger.Info("seeded product", zap.Int64("product_id", products[i].ID), zap.String("name", products[i].Name))
	}
	return len(products), nil
}
