package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/usecase"
)

// OrderHandler serves the read-only ops API used by operators and
// downstream tooling. It never mutates order state.
type OrderHandler struct {
	query usecase.OrderRepo
}

func NewOrderHandler(query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{query: query}
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.query.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := domain.Status(c.DefaultQuery("status", string(domain.StatusPending)))
	if status != domain.StatusPending && status != domain.StatusAssigned {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_status"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListByStatus(ctx, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}
