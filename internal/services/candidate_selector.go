package services

import (
	"context"

	"petstore/internal/models"
	"petstore/internal/repositories"
)

// CandidateSelector derives the products a recommendation may choose from.
type CandidateSelector struct {
	repo repositories.ProductRepository
}

// NewCandidateSelector creates a new CandidateSelector.
func NewCandidateSelector(repo repositories.ProductRepository) *CandidateSelector {
	return &CandidateSelector{repo: repo}
}

// ActiveInStock returns active products with quantity > 0 in ascending id
// order, or ErrNoActiveProducts when there are none.
func (s *CandidateSelector) ActiveInStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetActiveInStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoActiveProducts
	}
	return products, nil
}
