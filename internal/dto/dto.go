package dto

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-gateway/internal/model"
)

// --- Cart ---

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest carries an absolute target quantity. Quantity has no
// binding rule on purpose: zero is a valid request that the cart service
// clamps to 1.
type UpdateCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type RemoveCartItemRequest struct {
	CartItemID int64 `json:"cart_item_id" binding:"required"`
}

type CartResponse struct {
	ID       int64            `json:"id"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Items    []model.CartItem `json:"items"`
}

// --- Checkout ---

type BeginCheckoutResponse struct {
	ClientSecret   string          `json:"client_secret"`
	PublishableKey string          `json:"publishable_key"`
	Amount         decimal.Decimal `json:"amount"`
}

type CompleteCheckoutRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// WebhookEvent is the payment processor's event envelope, reduced to the
// fields this service consumes.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			FailureReason string `json:"last_payment_error,omitempty"`
		} `json:"object"`
	} `json:"data"`
}

// --- Catalog ---

type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	Gender          string          `json:"gender" binding:"required"`
	Size            string          `json:"size" binding:"required"`
	YouthSize       bool            `json:"youth_size"`
	Featured        bool            `json:"featured"`
	Brand           string          `json:"brand" binding:"required"`
	Sport           string          `json:"sport" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	Condition       string          `json:"condition" binding:"required"`
	YearProductMade string          `json:"year_product_made"`
	Image           string          `json:"image"`
}

type UpdateProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Gender          *string          `json:"gender"`
	Size            *string          `json:"size"`
	YouthSize       *bool            `json:"youth_size"`
	Featured        *bool            `json:"featured"`
	Brand           *string          `json:"brand"`
	Sport           *string          `json:"sport"`
	Quantity        *int             `json:"quantity"`
	Condition       *string          `json:"condition"`
	YearProductMade *string          `json:"year_product_made"`
	Image           *string          `json:"image"`
}

// --- Reviews ---

type CreateReviewRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Rating    float64 `json:"rating" binding:"required"`
	Comment   string  `json:"comment"`
}

// --- Orders ---

type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
}
