package repository

import (
	"context"
	"sort"
	"sync"

	"bozoruz/internal/domain"
)

// ReviewRepository defines the interface for product review access
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error)
}

type reviewRepository struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

// NewReviewRepository creates a read-only review store from the catalog seed
func NewReviewRepository(seed []domain.Review) ReviewRepository {
	reviews := make([]domain.Review, len(seed))
	copy(reviews, seed)
	return &reviewRepository{reviews: reviews}
}

// ListByProduct returns the reviews of one product, newest first.
// Unknown products have no reviews.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*domain.Review{}
	for _, review := range r.reviews {
		if review.ProductID == productID {
			rv := review
			result = append(result, &rv)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}
