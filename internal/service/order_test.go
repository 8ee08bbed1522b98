package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-gateway/internal/model"
)

type mockOrdersAPI struct {
	orders []model.Order
	err    error
	calls  int
}

func (m *mockOrdersAPI) OrdersByUser(_ context.Context, _ int64) ([]model.Order, error) {
	m.calls++
	return m.orders, m.err
}

func TestOrderService_History(t *testing.T) {
	api := &mockOrdersAPI{orders: []model.Order{
		{ID: 2, UserID: 5, Total: decimal.NewFromFloat(30.00)},
		{ID: 1, UserID: 5, Total: decimal.NewFromFloat(12.50)},
	}}
	svc := NewOrderService(api)

	orders, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	// Server order is preserved, no client-side sort.
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Equal(t, int64(1), orders[1].ID)
}

func TestOrderService_History_Empty(t *testing.T) {
	api := &mockOrdersAPI{orders: nil}
	svc := NewOrderService(api)

	orders, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.Equal(t, 1, api.calls)
}

func TestOrderService_History_Error(t *testing.T) {
	api := &mockOrdersAPI{err: errors.New("backend down")}
	svc := NewOrderService(api)

	_, err := svc.History(context.Background(), 5)
	assert.Error(t, err)
}

func TestOrderService_History_RequiresUser(t *testing.T) {
	api := &mockOrdersAPI{}
	svc := NewOrderService(api)

	_, err := svc.History(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoUser)
	assert.Zero(t, api.calls)
}
