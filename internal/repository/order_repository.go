package repository

import (
	"context"
	"sort"
	"sync"

	"bozoruz/internal/domain"
)

// OrderRepository defines the interface for order history access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}

type orderRepository struct {
	mu     sync.RWMutex
	orders map[string][]domain.Order
}

// NewOrderRepository creates an in-memory order history
func NewOrderRepository() OrderRepository {
	return &orderRepository{orders: make(map[string][]domain.Order)}
}

// Create appends order to the history of its user
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *order
	stored.Items = append([]domain.LineItem(nil), order.Items...)
	r.orders[order.UserID] = append(r.orders[order.UserID], stored)
	return nil
}

// ListByUser returns the orders of userID, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.orders[userID]
	result := make([]*domain.Order, 0, len(history))
	for i := range history {
		o := history[i]
		o.Items = append([]domain.LineItem(nil), history[i].Items...)
		result = append(result, &o)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}
