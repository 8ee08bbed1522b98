package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the marketplace's internal user record. It is created out-of-band
// by the backend on first login and read-only from this service.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ProfilePicURL string `json:"profile_pic_url"`
	Admin         bool   `json:"admin"`
}

// OAuthIdentity is the identity provider's payload for the current session.
type OAuthIdentity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Product struct {
	ID              int64           `json:"id"`
	SellerID        int64           `json:"seller_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Gender          string          `json:"gender"`
	Size            string          `json:"size"`
	YouthSize       bool            `json:"youth_size"`
	Featured        bool            `json:"featured"`
	Brand           string          `json:"brand"`
	Sport           string          `json:"sport"`
	Quantity        int             `json:"quantity"`
	Condition       string          `json:"condition"`
	Image           string          `json:"image,omitempty"`
	DateListed      string          `json:"date_listed,omitempty"`
	YearProductMade string          `json:"year_product_made,omitempty"`
	AvgRating       float64         `json:"avg_rating"`
}

// Cart mirrors the server-held cart. The mirror is never authoritative:
// every mutation replaces it wholesale with the backend's returned state.
type Cart struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Items    []CartItem      `json:"items"`
}

// CartItem carries a denormalized name/price snapshot of its product.
type CartItem struct {
	ID           int64           `json:"id,omitempty"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
}

// Order is an immutable snapshot created once per successful payment.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	OrderDate string          `json:"order_date"`
	Items     []OrderItem     `json:"items"`
}

type OrderItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Review struct {
	ID         int64   `json:"id"`
	ReviewerID int64   `json:"reviewer_id"`
	ProductID  int64   `json:"product_id"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment"`
}

type CheckoutStatus string

const (
	CheckoutStatusIntentReady CheckoutStatus = "intent_ready"
	CheckoutStatusSubmitting  CheckoutStatus = "submitting"
	CheckoutStatusSucceeded   CheckoutStatus = "succeeded"
	CheckoutStatusFailed      CheckoutStatus = "failed"
)

func (s CheckoutStatus) Terminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// CheckoutSession correlates a payment intent with the user who opened it.
// It is the durable record that lets the webhook finish a checkout even when
// the browser never returns after payment confirmation.
type CheckoutSession struct {
	ID             uuid.UUID
	UserID         int64
	IntentID       string
	Amount         decimal.Decimal
	Status         CheckoutStatus
	IdempotencyKey uuid.UUID
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderJob is the message published for the order worker on payment success.
type OrderJob struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    int64     `json:"user_id"`
	IntentID  string    `json:"intent_id"`
}
