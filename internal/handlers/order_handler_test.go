package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
)

func setupOrderRouter(handler *OrderHandler, principal *models.User) *gin.Engine {
	r := gin.New()
	orders := r.Group("/orders", injectPrincipal(principal))
	orders.GET("", handler.ListOrders)
	orders.PUT("/:id/pay", handler.MarkPaid)
	orders.PUT("/:id/deliver", handler.MarkDelivered)
	orders.DELETE("/:id", handler.DeleteOrder)
	return r
}

func TestOrderHandler_MarkPaid(t *testing.T) {
	t.Run("records order-paid with order and owner targets", func(t *testing.T) {
		audit := &mockAuditService{}
		orderSvc := &mockOrderService{
			markPaidFn: func(_ context.Context, id string) (*models.Order, error) {
				return &models.Order{Base: models.Base{ID: id}, UserID: otherID, OrderNumber: "ORD-1", IsPaid: true}, nil
			},
		}
		handler := NewOrderHandler(orderSvc, audit)
		r := setupOrderRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/orders/"+orderID+"/pay", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		records := audit.recorded()
		if len(records) != 1 {
			t.Fatalf("expected one record, got %d", len(records))
		}
		got := records[0]
		if got.Action != models.ActionOrderPaid || got.Notes != "Order ORD-1 marked as paid" {
			t.Errorf("unexpected record %+v", got)
		}
		want := []models.TargetRef{models.OrderTarget(orderID), models.UserTarget(otherID)}
		if len(got.Targets) != 2 || got.Targets[0] != want[0] || got.Targets[1] != want[1] {
			t.Errorf("unexpected targets %+v", got.Targets)
		}
	})

	t.Run("already paid is 400 and not recorded", func(t *testing.T) {
		audit := &mockAuditService{}
		orderSvc := &mockOrderService{
			markPaidFn: func(context.Context, string) (*models.Order, error) {
				return nil, apperrors.ErrOrderAlreadyPaid
			},
		}
		handler := NewOrderHandler(orderSvc, audit)
		r := setupOrderRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/orders/"+orderID+"/pay", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ORDER_ALREADY_PAID")
		if len(audit.recorded()) != 0 {
			t.Error("failed transition must not be recorded")
		}
	})
}

func TestOrderHandler_DeliverAndDelete(t *testing.T) {
	audit := &mockAuditService{}
	handler := NewOrderHandler(&mockOrderService{}, audit)
	r := setupOrderRouter(handler, testAdmin())

	if rec := doRequest(r, "PUT", "/orders/"+orderID+"/deliver", ""); rec.Code != http.StatusOK {
		t.Fatalf("deliver: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(r, "DELETE", "/orders/"+orderID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	records := audit.recorded()
	if len(records) != 2 || records[0].Action != models.ActionOrderDelivered || records[1].Action != models.ActionOrderDeleted {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	handler := NewOrderHandler(&mockOrderService{}, &mockAuditService{})
	r := setupOrderRouter(handler, testAdmin())

	rec := doRequest(r, "GET", "/orders?page=1&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(r, "GET", "/orders?page=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative page, got %d", rec.Code)
	}
}
