package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-gateway/internal/backend"
	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/model"
	"github.com/flicky/storefront-gateway/internal/repository"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrSessionNotFound = errors.New("checkout session not found")
)

type CheckoutAPI interface {
	Cart(ctx context.Context, userID int64) (*model.Cart, error)
	CreatePaymentIntent(ctx context.Context, userID int64, amount decimal.Decimal) (*backend.PaymentIntent, error)
}

// OrderJobPublisher hands a successful checkout to the order worker.
type OrderJobPublisher interface {
	Publish(ctx context.Context, job model.OrderJob) error
}

// CheckoutService drives a checkout session through
// intent-ready -> submitting -> succeeded|failed.
// The session row keyed by payment intent id is what lets the processor
// webhook finish a checkout whose browser never came back.
type CheckoutService struct {
	api            CheckoutAPI
	sessions       repository.CheckoutRepository
	publisher      OrderJobPublisher
	publishableKey string
}

func NewCheckoutService(api CheckoutAPI, sessions repository.CheckoutRepository, publisher OrderJobPublisher, publishableKey string) *CheckoutService {
	return &CheckoutService{api: api, sessions: sessions, publisher: publisher, publishableKey: publishableKey}
}

// Begin opens a payment intent for the authoritative cart subtotal and
// records the session. A failed intent request leaves no session behind and
// returns no client secret, so no order creation can ever follow from it.
func (s *CheckoutService) Begin(ctx context.Context, user *model.User) (*dto.BeginCheckoutResponse, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrNoUser
	}

	cart, err := s.api.Cart(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	amount := Subtotal(cart.Items)
	intent, err := s.api.CreatePaymentIntent(ctx, user.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("request intent: %w", err)
	}

	session := &model.CheckoutSession{
		UserID:         user.ID,
		IntentID:       intent.ID,
		Amount:         amount,
		Status:         model.CheckoutStatusIntentReady,
		IdempotencyKey: uuid.New(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	return &dto.BeginCheckoutResponse{
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.publishableKey,
		Amount:         amount,
	}, nil
}

// Complete finishes a checkout after the processor confirmed payment. It is
// called from both the browser's success navigation and the payment webhook.
// The job is published before the status flip: a broker failure leaves the
// session non-terminal, so a later retry publishes again instead of silently
// dropping a paid order. Two callers racing past the terminal check may both
// publish; the worker's idempotency marker collapses the duplicate.
func (s *CheckoutService) Complete(ctx context.Context, intentID string) error {
	session, err := s.sessions.GetByIntentID(ctx, intentID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status.Terminal() {
		return nil
	}

	job := model.OrderJob{SessionID: session.ID, UserID: session.UserID, IntentID: intentID}
	if err := s.publisher.Publish(ctx, job); err != nil {
		return fmt.Errorf("publish order job: %w", err)
	}

	if _, err := s.sessions.MarkSucceeded(ctx, intentID); err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	return nil
}

// Fail records a processor failure. Nothing retries automatically; the user
// re-attempts with a fresh intent. A session already succeeded stays so.
func (s *CheckoutService) Fail(ctx context.Context, intentID, reason string) error {
	if err := s.sessions.MarkFailed(ctx, intentID, reason); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
