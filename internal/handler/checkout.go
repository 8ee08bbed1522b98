package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/middleware"
	"github.com/flicky/storefront-gateway/internal/service"
)

type CheckoutHandler struct {
	svc           *service.CheckoutService
	webhookSecret string
}

func NewCheckoutHandler(svc *service.CheckoutService, webhookSecret string) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, webhookSecret: webhookSecret}
}

// Begin opens a checkout for the current cart and returns the client secret
// that drives the hosted payment element. Card data never touches this
// service.
func (h *CheckoutHandler) Begin(c *gin.Context) {
	user := middleware.GetUser(c)
	resp, err := h.svc.Begin(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			c.JSON(http.StatusConflict, gin.H{"error": "cart is empty"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete is the browser's success navigation. The webhook delivers the
// same signal independently, so losing this request loses nothing.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req dto.CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Complete(c.Request.Context(), req.PaymentIntentID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment intent"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checkout complete"})
}

// Webhook receives the payment processor's events. It is unauthenticated by
// session; the HMAC signature over the raw body is the credential.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}

	if !VerifySignature(h.webhookSecret, payload, c.GetHeader("Webhook-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case "payment_intent.succeeded":
		err = h.svc.Complete(ctx, event.Data.Object.ID)
	case "payment_intent.payment_failed":
		err = h.svc.Fail(ctx, event.Data.Object.ID, event.Data.Object.FailureReason)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			// An intent we never opened; acknowledging stops redelivery.
			c.JSON(http.StatusOK, gin.H{"message": "unknown intent"})
			return
		}
		// Non-2xx makes the processor redeliver, which is safe: Complete is
		// idempotent.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
