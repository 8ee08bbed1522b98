package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-gateway/internal/model"
)

// Cart fetches the server-held cart for a user. The backend creates the cart
// implicitly on first add, so a 404 here means "no cart yet", which callers
// receive as an empty cart rather than an error.
func (c *Client) Cart(ctx context.Context, userID int64) (*model.Cart, error) {
	var cart model.Cart
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cart/%d", userID), nil, nil, &cart)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return &cart, nil
}

// UpdateCartItem sends an absolute target quantity plus the locally computed
// subtotal. The backend may reject the target (e.g. over available stock);
// the returned cart is authoritative on success.
func (c *Client) UpdateCartItem(ctx context.Context, cartID, productID int64, quantity int, subtotal decimal.Decimal) (*model.Cart, error) {
	req := struct {
		ProductID int64           `json:"product_id"`
		Quantity  int             `json:"quantity"`
		Subtotal  decimal.Decimal `json:"subtotal"`
	}{ProductID: productID, Quantity: quantity, Subtotal: subtotal}

	var cart model.Cart
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", cartID), nil, req, &cart); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return &cart, nil
}

// RemoveCartItem deletes a single line item, identified in the request body.
func (c *Client) RemoveCartItem(ctx context.Context, cartID, cartItemID int64) (*model.Cart, error) {
	req := struct {
		CartItemID int64 `json:"cart_item_id"`
	}{CartItemID: cartItemID}

	var cart model.Cart
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d/remove", cartID), nil, req, &cart); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return &cart, nil
}

// AddCartItem adds a product to the user's cart, creating the cart when the
// user has none. The response is the full authoritative cart.
func (c *Client) AddCartItem(ctx context.Context, userID, productID int64, quantity int) (*model.Cart, error) {
	req := struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/add", userID), nil, req, &cart); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return &cart, nil
}
