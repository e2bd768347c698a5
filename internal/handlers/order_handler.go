package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/services"
)

// OrderHandler serves order administration for staff
type OrderHandler struct {
	orderService services.OrderServicer
	auditService services.AuditServicer
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService services.OrderServicer, auditService services.AuditServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService}
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Data       []models.Order `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// ListOrders returns a page of orders, newest first
// @Summary     List orders
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number" minimum(1)
// @Param       limit query int false "Page size"   minimum(1) maximum(200)
// @Success     200 {object} OrderListResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkPaid marks an order as paid
// @Summary     Mark an order as paid
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     400 {object} ErrorResponse "Already paid"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id}/pay [put]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.orderService.MarkPaid, models.ActionOrderPaid, "marked as paid")
}

// MarkDelivered marks an order as delivered
// @Summary     Mark an order as delivered
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     400 {object} ErrorResponse "Already delivered"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id}/deliver [put]
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.orderService.MarkDelivered, models.ActionOrderDelivered, "marked as delivered")
}

// DeleteOrder soft-deletes an order
// @Summary     Delete an order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	h.transition(c, h.orderService.DeleteOrder, models.ActionOrderDeleted, "deleted")
}

// transition runs op on the order named in the path and records action once it succeeds.
func (h *OrderHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, id string) (*models.Order, error),
	action models.AuditAction,
	verb string,
) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := op(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  action,
		ActorID: actor.ID,
		Targets: []models.TargetRef{models.OrderTarget(order.ID), models.UserTarget(order.UserID)},
		Notes:   fmt.Sprintf("Order %s %s", order.OrderNumber, verb),
		Tags:    []string{"orders"},
		Meta:    requestMeta(c),
	})

	c.JSON(http.StatusOK, order)
}
