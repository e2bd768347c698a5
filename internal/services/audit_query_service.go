package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/pagination"
)

// UserSummary is the display form of a user referenced by an audit entry.
type UserSummary struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	Deleted bool        `json:"deleted,omitempty"`
}

// OrderSummary is the display form of an order referenced by an audit entry.
type OrderSummary struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
}

// ProductSummary is the display form of a product referenced by an audit entry.
type ProductSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// AuditLogView is an audit entry with its references resolved for display.
// A reference whose row no longer exists keeps its id and a nil summary.
type AuditLogView struct {
	ID              string             `json:"id"`
	ActorID         string             `json:"actor_id"`
	Actor           *UserSummary       `json:"actor"`
	Action          models.AuditAction `json:"action"`
	TargetUserID    *string            `json:"target_user_id,omitempty"`
	TargetUser      *UserSummary       `json:"target_user,omitempty"`
	TargetOrderID   *string            `json:"target_order_id,omitempty"`
	TargetOrder     *OrderSummary      `json:"target_order,omitempty"`
	TargetProductID *string            `json:"target_product_id,omitempty"`
	TargetProduct   *ProductSummary    `json:"target_product,omitempty"`
	Notes           string             `json:"notes"`
	IPAddress       string             `json:"ip_address"`
	UserAgent       string             `json:"user_agent"`
	Location        string             `json:"location"`
	Tags            []string           `json:"tags"`
	Summary         string             `json:"summary"`
	CreatedAt       time.Time          `json:"created_at"`
}

// auditQueryService serves filtered, paginated reads of the audit trail.
type auditQueryService struct {
	store AuditStore
	db    *gorm.DB
}

// NewAuditQueryService creates a new AuditQueryServicer. db is used to
// resolve actor and target summaries.
func NewAuditQueryService(store AuditStore, db *gorm.DB) AuditQueryServicer {
	return &auditQueryService{store: store, db: db}
}

// Query returns one page of entries matching filter, newest first. A page
// past the end is empty rather than an error.
func (s *auditQueryService) Query(ctx context.Context, filter AuditLogFilter, page pagination.PageRequest) (*pagination.PageResponse[AuditLogView], error) {
	page.Defaults()
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "startDate must not be after endDate")
	}

	entries, total, err := s.store.Find(ctx, filter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views, err := s.resolve(ctx, entries)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(views, page.Page, page.Limit, total)
	return &resp, nil
}

// resolve batch-loads every referenced user, order and product.
func (s *auditQueryService) resolve(ctx context.Context, entries []models.AuditLog) ([]AuditLogView, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	userIDs := map[string]struct{}{}
	orderIDs := map[string]struct{}{}
	productIDs := map[string]struct{}{}
	for i := range entries {
		userIDs[entries[i].ActorID] = struct{}{}
		if id := entries[i].TargetUserID; id != nil {
			userIDs[*id] = struct{}{}
		}
		if id := entries[i].TargetOrderID; id != nil {
			orderIDs[*id] = struct{}{}
		}
		if id := entries[i].TargetProductID; id != nil {
			productIDs[*id] = struct{}{}
		}
	}

	db := s.db.WithContext(ctx)

	// Audit entries outlive the rows they reference, so include soft-deleted ones.
	var users []models.User
	if err := db.Unscoped().Select("id", "name", "email", "role", "deleted_at").
		Where("id IN ?", keys(userIDs)).Find(&users).Error; err != nil {
		return nil, err
	}
	userByID := make(map[string]*UserSummary, len(users))
	for _, u := range users {
		userByID[u.ID] = &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Deleted: u.DeletedAt.Valid}
	}

	orderByID := map[string]*OrderSummary{}
	if len(orderIDs) > 0 {
		var orders []models.Order
		if err := db.Unscoped().Select("id", "order_number", "status").
			Where("id IN ?", keys(orderIDs)).Find(&orders).Error; err != nil {
			return nil, err
		}
		for _, o := range orders {
			orderByID[o.ID] = &OrderSummary{ID: o.ID, OrderNumber: o.OrderNumber, Status: o.Status}
		}
	}

	productByID := map[string]*ProductSummary{}
	if len(productIDs) > 0 {
		var products []models.Product
		if err := db.Unscoped().Select("id", "name", "brand").
			Where("id IN ?", keys(productIDs)).Find(&products).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			productByID[p.ID] = &ProductSummary{ID: p.ID, Name: p.Name, Brand: p.Brand}
		}
	}

	views := make([]AuditLogView, len(entries))
	for i := range entries {
		e := &entries[i]
		v := AuditLogView{
			ID:              e.ID,
			ActorID:         e.ActorID,
			Actor:           userByID[e.ActorID],
			Action:          e.Action,
			TargetUserID:    e.TargetUserID,
			TargetOrderID:   e.TargetOrderID,
			TargetProductID: e.TargetProductID,
			Notes:           e.Notes,
			IPAddress:       e.IPAddress,
			UserAgent:       e.UserAgent,
			Location:        e.Location,
			Tags:            e.Tags,
			CreatedAt:       e.CreatedAt,
		}
		if v.Tags == nil {
			v.Tags = []string{}
		}
		if e.TargetUserID != nil {
			v.TargetUser = userByID[*e.TargetUserID]
		}
		if e.TargetOrderID != nil {
			v.TargetOrder = orderByID[*e.TargetOrderID]
		}
		if e.TargetProductID != nil {
			v.TargetProduct = productByID[*e.TargetProductID]
		}
		v.Summary = Summarize(e.Action, e.ActorID, v.Actor)
		views[i] = v
	}
	return views, nil
}

// Summarize renders "<action> by <actor>", naming the actor when known.
func Summarize(action models.AuditAction, actorID string, actor *UserSummary) string {
	who := actorID
	if actor != nil && actor.Name != "" {
		who = actor.Name
	}
	return string(action) + " by " + who
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
