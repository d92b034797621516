package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCart        = errors.New("cart is empty")
)

// CheckoutService turns the cart into an order for the logged in user
type CheckoutService interface {
	Checkout(ctx context.Context, address string) (*domain.Order, error)
	Orders(ctx context.Context, userID string) ([]*domain.Order, error)
}

type checkoutService struct {
	cart   *Cart
	auth   *Auth
	orders repository.OrderRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(cart *Cart, auth *Auth, orders repository.OrderRepository, logger *zap.Logger) CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &checkoutService{
		cart:   cart,
		auth:   auth,
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// Checkout records a pending order with the cart contents and clears the cart.
// An empty address falls back to the address on the user profile. Items added
// while the order is being saved stay in the cart; if the save fails the
// taken items are put back.
func (s *checkoutService) Checkout(ctx context.Context, address string) (*domain.Order, error) {
	user, ok := s.auth.CurrentUser()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if address == "" {
		address = user.Address
	}

	snap := s.cart.Take()
	if snap.Empty() {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Items:   snap.Items,
		Total:   snap.TotalPrice,
		Status:  domain.OrderStatusPending,
		Date:    s.now().UTC(),
		Address: address,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.cart.PutBack(snap.Items)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.Int64("total", order.Total),
	)
	return order, nil
}

// Orders returns the order history of userID, newest first
func (s *checkoutService) Orders(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
