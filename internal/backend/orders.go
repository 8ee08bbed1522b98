package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-gateway/internal/model"
)

// OrdersByUser returns the user's order history in server order.
func (c *Client) OrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var resp struct {
		Orders []model.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/user/%d", userID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if resp.Orders == nil {
		resp.Orders = []model.Order{}
	}
	return resp.Orders, nil
}

// CreateOrder snapshots the user's server-held cart into an immutable order.
// The backend treats repeated calls for an already-emptied cart as an error,
// which the worker's idempotency marker prevents from ever being sent twice.
func (c *Client) CreateOrder(ctx context.Context, userID int64) (*model.Order, error) {
	var resp struct {
		Order model.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/create/%d", userID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &resp.Order, nil
}

// PaymentIntent is the processor-side record for one collection attempt,
// referenced transiently during checkout.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent asks the backend to open a payment intent for the given
// amount, expressed in the smallest currency unit.
func (c *Client) CreatePaymentIntent(ctx context.Context, userID int64, amount decimal.Decimal) (*PaymentIntent, error) {
	req := struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Customer string `json:"customer"`
	}{
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: "usd",
		Customer: fmt.Sprintf("%d", userID),
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/create-payment-intent", nil, req, &intent); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("create payment intent: no client secret returned")
	}
	return &intent, nil
}
