package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-gateway/internal/backend"
	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/middleware"
	"github.com/flicky/storefront-gateway/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	user := middleware.GetUser(c)
	cart, err := h.svc.Fetch(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{ID: cart.ID, Subtotal: service.Subtotal(cart.Items), Items: cart.Items})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUser(c)
	cart, err := h.svc.Add(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CartResponse{ID: cart.ID, Subtotal: service.Subtotal(cart.Items), Items: cart.Items})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUser(c)
	ctx := c.Request.Context()

	cart, err := h.svc.Fetch(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.svc.SetQuantity(ctx, cart, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{ID: updated.ID, Subtotal: service.Subtotal(updated.Items), Items: updated.Items})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req dto.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUser(c)
	ctx := c.Request.Context()

	cart, err := h.svc.Fetch(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.svc.Remove(ctx, cart, req.CartItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{ID: updated.ID, Subtotal: service.Subtotal(updated.Items), Items: updated.Items})
}

// respondError surfaces a backend rejection with its own status and message;
// anything else is an internal failure.
func respondError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		return
	}
	if errors.Is(err, service.ErrNoUser) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
