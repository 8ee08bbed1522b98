package service

import (
	"context"
	"fmt"

	"github.com/flicky/storefront-gateway/internal/model"
)

type OrdersAPI interface {
	OrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
}

// OrderService is the read-only order history view: server order preserved,
// an empty history is a distinct non-error outcome.
type OrderService struct {
	api OrdersAPI
}

func NewOrderService(api OrdersAPI) *OrderService {
	return &OrderService{api: api}
}

func (s *OrderService) History(ctx context.Context, userID int64) ([]model.Order, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}
	orders, err := s.api.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
