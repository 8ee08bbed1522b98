package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/middleware"
	"github.com/flicky/storefront-gateway/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// ListOrders returns the user's history in server order. An empty history is
// a 200 with an empty list, not an error.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user := middleware.GetUser(c)
	orders, err := h.svc.History(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: orders})
}
