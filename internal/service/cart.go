package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-gateway/internal/model"
)

var ErrNoUser = errors.New("user not resolved")

type CartAPI interface {
	Cart(ctx context.Context, userID int64) (*model.Cart, error)
	UpdateCartItem(ctx context.Context, cartID, productID int64, quantity int, subtotal decimal.Decimal) (*model.Cart, error)
	RemoveCartItem(ctx context.Context, cartID, cartItemID int64) (*model.Cart, error)
	AddCartItem(ctx context.Context, userID, productID int64, quantity int) (*model.Cart, error)
}

// CartService holds the cart-mirror rules. The backend is authoritative for
// every cart: an accepted mutation replaces the mirror with the returned
// state wholesale, a rejected one leaves the prior mirror untouched. Nothing
// is mutated optimistically ahead of the round trip.
type CartService struct {
	api CartAPI
}

func NewCartService(api CartAPI) *CartService {
	return &CartService{api: api}
}

// Fetch establishes the mirror. The caller must have a resolved user.
func (s *CartService) Fetch(ctx context.Context, userID int64) (*model.Cart, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}
	cart, err := s.api.Cart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	return cart, nil
}

// SetQuantity sends an absolute target quantity for one line item. The target
// is clamped to a minimum of 1 before any request: a decrement below 1 when
// the item already sits at 1 never reaches the network. The request carries
// the subtotal the cart would have at the target quantity.
func (s *CartService) SetQuantity(ctx context.Context, cart *model.Cart, productID int64, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	current, ok := itemQuantity(cart.Items, productID)
	if !ok {
		return cart, fmt.Errorf("product %d not in cart", productID)
	}
	if current == quantity {
		return cart, nil
	}

	subtotal := subtotalWith(cart.Items, productID, quantity)
	updated, err := s.api.UpdateCartItem(ctx, cart.ID, productID, quantity, subtotal)
	if err != nil {
		return cart, fmt.Errorf("set quantity: %w", err)
	}
	return updated, nil
}

// Remove deletes one line item, identified by its cart item id.
func (s *CartService) Remove(ctx context.Context, cart *model.Cart, cartItemID int64) (*model.Cart, error) {
	updated, err := s.api.RemoveCartItem(ctx, cart.ID, cartItemID)
	if err != nil {
		return cart, fmt.Errorf("remove item: %w", err)
	}
	return updated, nil
}

// Add puts a product in the user's cart and waits for the authoritative
// response before the mirror changes; there is no optimistic append.
func (s *CartService) Add(ctx context.Context, userID, productID int64, quantity int) (*model.Cart, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}
	if quantity < 1 {
		quantity = 1
	}
	cart, err := s.api.AddCartItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return cart, nil
}

// Subtotal is Σ price×quantity over the items. An item with no price
// contributes zero. The sum does not depend on item order.
func Subtotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func subtotalWith(items []model.CartItem, productID int64, quantity int) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		qty := item.Quantity
		if item.ProductID == productID {
			qty = quantity
		}
		total = total.Add(item.ProductPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

func itemQuantity(items []model.CartItem, productID int64) (int, bool) {
	for _, item := range items {
		if item.ProductID == productID {
			return item.Quantity, true
		}
	}
	return 0, false
}
