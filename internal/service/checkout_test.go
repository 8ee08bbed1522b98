package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-gateway/internal/backend"
	"github.com/flicky/storefront-gateway/internal/model"
)

type mockCheckoutAPI struct {
	cart        *model.Cart
	cartErr     error
	intent      *backend.PaymentIntent
	intentErr   error
	intentCalls int
}

func (m *mockCheckoutAPI) Cart(_ context.Context, _ int64) (*model.Cart, error) {
	return m.cart, m.cartErr
}

func (m *mockCheckoutAPI) CreatePaymentIntent(_ context.Context, _ int64, _ decimal.Decimal) (*backend.PaymentIntent, error) {
	m.intentCalls++
	return m.intent, m.intentErr
}

type mockSessionRepo struct {
	sessions map[string]*model.CheckoutSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.CheckoutSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.CheckoutSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.IntentID] = session
	return nil
}

func (m *mockSessionRepo) GetByIntentID(_ context.Context, intentID string) (*model.CheckoutSession, error) {
	return m.sessions[intentID], nil
}

func (m *mockSessionRepo) MarkSucceeded(_ context.Context, intentID string) (bool, error) {
	session, ok := m.sessions[intentID]
	if !ok || session.Status.Terminal() {
		return false, nil
	}
	session.Status = model.CheckoutStatusSucceeded
	return true, nil
}

func (m *mockSessionRepo) MarkFailed(_ context.Context, intentID, reason string) error {
	if session, ok := m.sessions[intentID]; ok && session.Status != model.CheckoutStatusSucceeded {
		session.Status = model.CheckoutStatusFailed
		session.FailureReason = reason
	}
	return nil
}

type mockPublisher struct {
	jobs []model.OrderJob
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, job model.OrderJob) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func checkoutUser() *model.User {
	return &model.User{ID: 5, Email: "buyer@example.com"}
}

func TestCheckoutService_Begin(t *testing.T) {
	api := &mockCheckoutAPI{
		cart:   cartWithItem(7, 2, 10.00),
		intent: &backend.PaymentIntent{ID: "pi_1", ClientSecret: "secret_1"},
	}
	sessions := newMockSessionRepo()
	svc := NewCheckoutService(api, sessions, &mockPublisher{}, "pk_test")

	resp, err := svc.Begin(context.Background(), checkoutUser())
	require.NoError(t, err)
	assert.Equal(t, "secret_1", resp.ClientSecret)
	assert.Equal(t, "pk_test", resp.PublishableKey)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(20.00)))

	session := sessions.sessions["pi_1"]
	require.NotNil(t, session)
	assert.Equal(t, int64(5), session.UserID)
	assert.Equal(t, model.CheckoutStatusIntentReady, session.Status)
	assert.NotEqual(t, uuid.Nil, session.IdempotencyKey)
}

func TestCheckoutService_Begin_EmptyCart(t *testing.T) {
	api := &mockCheckoutAPI{cart: &model.Cart{ID: 1, UserID: 5, Items: []model.CartItem{}}}
	svc := NewCheckoutService(api, newMockSessionRepo(), &mockPublisher{}, "pk_test")

	_, err := svc.Begin(context.Background(), checkoutUser())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, api.intentCalls)
}

func TestCheckoutService_Begin_IntentFailureLeavesNoSession(t *testing.T) {
	api := &mockCheckoutAPI{
		cart:      cartWithItem(7, 2, 10.00),
		intentErr: errors.New("processor unavailable"),
	}
	sessions := newMockSessionRepo()
	publisher := &mockPublisher{}
	svc := NewCheckoutService(api, sessions, publisher, "pk_test")

	_, err := svc.Begin(context.Background(), checkoutUser())
	require.Error(t, err)
	assert.Empty(t, sessions.sessions)
	assert.Empty(t, publisher.jobs)
}

func TestCheckoutService_Begin_RequiresUser(t *testing.T) {
	svc := NewCheckoutService(&mockCheckoutAPI{}, newMockSessionRepo(), &mockPublisher{}, "pk_test")
	_, err := svc.Begin(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestCheckoutService_Complete_PublishesOneJob(t *testing.T) {
	sessions := newMockSessionRepo()
	publisher := &mockPublisher{}
	svc := NewCheckoutService(&mockCheckoutAPI{}, sessions, publisher, "pk_test")

	session := &model.CheckoutSession{
		UserID: 5, IntentID: "pi_1", Status: model.CheckoutStatusIntentReady,
		IdempotencyKey: uuid.New(),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	// Browser return and webhook both complete the same intent.
	require.NoError(t, svc.Complete(context.Background(), "pi_1"))
	require.NoError(t, svc.Complete(context.Background(), "pi_1"))

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, session.ID, publisher.jobs[0].SessionID)
	assert.Equal(t, int64(5), publisher.jobs[0].UserID)
	assert.Equal(t, "pi_1", publisher.jobs[0].IntentID)
}

func TestCheckoutService_Complete_RetryAfterPublishFailure(t *testing.T) {
	sessions := newMockSessionRepo()
	publisher := &mockPublisher{err: errors.New("broker unavailable")}
	svc := NewCheckoutService(&mockCheckoutAPI{}, sessions, publisher, "pk_test")

	session := &model.CheckoutSession{
		UserID: 5, IntentID: "pi_1", Status: model.CheckoutStatusIntentReady,
		IdempotencyKey: uuid.New(),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	// A failed publish must not strand the session in a terminal state.
	require.Error(t, svc.Complete(context.Background(), "pi_1"))
	assert.Equal(t, model.CheckoutStatusIntentReady, session.Status)
	assert.Empty(t, publisher.jobs)

	// Webhook redelivery with a healthy broker gets the job out.
	publisher.err = nil
	require.NoError(t, svc.Complete(context.Background(), "pi_1"))
	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, model.CheckoutStatusSucceeded, session.Status)
}

func TestCheckoutService_Complete_UnknownIntent(t *testing.T) {
	svc := NewCheckoutService(&mockCheckoutAPI{}, newMockSessionRepo(), &mockPublisher{}, "pk_test")
	err := svc.Complete(context.Background(), "pi_unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckoutService_Fail_RecordsReason(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := NewCheckoutService(&mockCheckoutAPI{}, sessions, &mockPublisher{}, "pk_test")

	session := &model.CheckoutSession{
		UserID: 5, IntentID: "pi_1", Status: model.CheckoutStatusIntentReady,
		IdempotencyKey: uuid.New(),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	require.NoError(t, svc.Fail(context.Background(), "pi_1", "card declined"))
	assert.Equal(t, model.CheckoutStatusFailed, session.Status)
	assert.Equal(t, "card declined", session.FailureReason)
}

func TestCheckoutService_Fail_DoesNotOverrideSuccess(t *testing.T) {
	sessions := newMockSessionRepo()
	publisher := &mockPublisher{}
	svc := NewCheckoutService(&mockCheckoutAPI{}, sessions, publisher, "pk_test")

	session := &model.CheckoutSession{
		UserID: 5, IntentID: "pi_1", Status: model.CheckoutStatusIntentReady,
		IdempotencyKey: uuid.New(),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	require.NoError(t, svc.Complete(context.Background(), "pi_1"))
	require.NoError(t, svc.Fail(context.Background(), "pi_1", "late failure event"))

	assert.Equal(t, model.CheckoutStatusSucceeded, session.Status)
	assert.Len(t, publisher.jobs, 1)
}
