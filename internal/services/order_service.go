package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/uuid"
)

// orderService handles order administration.
type orderService struct {
	db *gorm.DB
}

// NewOrderService creates a new OrderServicer.
func NewOrderService(db *gorm.DB) OrderServicer {
	return &orderService{db: db}
}

// ListOrders returns orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var orders []models.Order
	if err := db.Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(orders, page.Page, page.Limit, total)
	return &resp, nil
}

// GetOrderByID retrieves an order by ID
func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrOrderNotFound
	}
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// MarkPaid marks an unpaid order as paid.
func (s *orderService) MarkPaid(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, apperrors.ErrOrderAlreadyPaid
	}

	now := time.Now()
	updates := map[string]interface{}{"is_paid": true, "paid_at": now}
	if !order.IsDelivered {
		updates["status"] = models.OrderStatusPaid
	}
	if err := s.db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetOrderByID(ctx, id)
}

// MarkDelivered marks an undelivered order as delivered.
func (s *orderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsDelivered {
		return nil, apperrors.ErrOrderAlreadyDelivered
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"is_delivered": true,
		"delivered_at": now,
		"status":       models.OrderStatusDelivered,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetOrderByID(ctx, id)
}

// DeleteOrder soft-deletes an order.
func (s *orderService) DeleteOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return order, nil
}
