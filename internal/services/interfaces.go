package services

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	// LoadPrincipal re-reads the live user for an authenticated request.
	LoadPrincipal(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string, role models.Role) (*models.User, bool, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateProfile(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	UpdateAddresses(ctx context.Context, id string, addresses []string) (*models.User, error)
	ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, id string) (*models.User, error)
	ResetPassword(ctx context.Context, id, newPassword string) (*models.User, error)
	SetSuspended(ctx context.Context, id string, suspended bool) (*models.User, error)
}

// UserUpdate holds optional profile fields; nil leaves a field unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// OrderServicer defines the contract for order administration.
type OrderServicer interface {
	ListOrders(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	MarkPaid(ctx context.Context, id string) (*models.Order, error)
	MarkDelivered(ctx context.Context, id string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) (*models.Order, error)
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Brand       string
	Description string
	Price       int64
	Stock       int
	CategoryID  *string
}

// ProductServicer defines the contract for catalog product administration.
type ProductServicer interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (*models.Product, error)
}

// CategoryServicer defines the contract for catalog category administration.
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, name, description *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) (*models.Category, error)
}

// RequestMeta is the request context an audit entry is enriched with. A nil
// *RequestMeta marks a system-originated action.
type RequestMeta struct {
	IPOverride   string
	ForwardedFor string
	RemoteAddr   string
	UserAgent    string
	Location     string
	ActorRole    models.Role
}

// AuditRecord describes one privileged action to be recorded.
type AuditRecord struct {
	Action  models.AuditAction
	ActorID string
	Targets []models.TargetRef
	Notes   string
	Tags    []string
	Meta    *RequestMeta
}

// AuditServicer records audit entries.
type AuditServicer interface {
	// Record writes an entry and never reports failure to the caller.
	Record(ctx context.Context, rec AuditRecord)
	// Create writes an entry and returns any validation or store error.
	Create(ctx context.Context, rec AuditRecord) (*models.AuditLog, error)
}

// AuditLogFilter holds the optional audit query filters.
type AuditLogFilter struct {
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Keyword   string
}

// AuditQueryServicer retrieves audit entries for review.
type AuditQueryServicer interface {
	Query(ctx context.Context, filter AuditLogFilter, page pagination.PageRequest) (*pagination.PageResponse[AuditLogView], error)
}
