package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/services"
	"storefront/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	loadPrincipalFn   func(ctx context.Context, id string) (*models.User, error)
	createUserFn      func(ctx context.Context, name, email, password string) (*models.User, error)
	attemptLoginFn    func(ctx context.Context, email, password string) (*models.User, error)
	getUserByIDFn     func(ctx context.Context, id string) (*models.User, error)
	listUsersFn       func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	updateProfileFn   func(ctx context.Context, id string, update services.UserUpdate) (*models.User, error)
	updateAddressesFn func(ctx context.Context, id string, addresses []string) (*models.User, error)
	changeRoleFn      func(ctx context.Context, id string, role models.Role) (*models.User, error)
	deleteUserFn      func(ctx context.Context, actorID, id string) (*models.User, error)
	resetPasswordFn   func(ctx context.Context, id, newPassword string) (*models.User, error)
	setSuspendedFn    func(ctx context.Context, id string, suspended bool) (*models.User, error)
}

func (m *mockUserService) LoadPrincipal(ctx context.Context, id string) (*models.User, error) {
	if m.loadPrincipalFn != nil {
		return m.loadPrincipalFn(ctx, id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, name, email, password)
	}
	return &models.User{Name: name, Email: email, Role: models.RoleCustomer}, nil
}

func (m *mockUserService) EnsureAdmin(_ context.Context, name, email, _ string, role models.Role) (*models.User, bool, error) {
	return &models.User{Name: name, Email: email, Role: role}, true, nil
}

func (m *mockUserService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(ctx, email, password)
	}
	return &models.User{Email: email}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, page)
	}
	resp := pagination.NewPageResponse[models.User](nil, 1, pagination.DefaultLimit, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id string, update services.UserUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, update)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) UpdateAddresses(ctx context.Context, id string, addresses []string) (*models.User, error) {
	if m.updateAddressesFn != nil {
		return m.updateAddressesFn(ctx, id, addresses)
	}
	return &models.User{Base: models.Base{ID: id}, Addresses: addresses}, nil
}

func (m *mockUserService) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if m.changeRoleFn != nil {
		return m.changeRoleFn(ctx, id, role)
	}
	return &models.User{Base: models.Base{ID: id}, Role: role}, nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, actorID, id string) (*models.User, error) {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, actorID, id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) ResetPassword(ctx context.Context, id, newPassword string) (*models.User, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, id, newPassword)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) SetSuspended(ctx context.Context, id string, suspended bool) (*models.User, error) {
	if m.setSuspendedFn != nil {
		return m.setSuspendedFn(ctx, id, suspended)
	}
	return &models.User{Base: models.Base{ID: id}, IsSuspended: suspended}, nil
}

// mockAuditService remembers every record it is given.
type mockAuditService struct {
	mu       sync.Mutex
	records  []services.AuditRecord
	createFn func(ctx context.Context, rec services.AuditRecord) (*models.AuditLog, error)
}

func (m *mockAuditService) Record(_ context.Context, rec services.AuditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

func (m *mockAuditService) Create(ctx context.Context, rec services.AuditRecord) (*models.AuditLog, error) {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return &models.AuditLog{ID: "log-1", ActorID: rec.ActorID, Action: rec.Action, Notes: rec.Notes}, nil
}

func (m *mockAuditService) recorded() []services.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.AuditRecord(nil), m.records...)
}

type mockAuditQueryService struct {
	queryFn func(ctx context.Context, filter services.AuditLogFilter, page pagination.PageRequest) (*pagination.PageResponse[services.AuditLogView], error)
}

func (m *mockAuditQueryService) Query(ctx context.Context, filter services.AuditLogFilter, page pagination.PageRequest) (*pagination.PageResponse[services.AuditLogView], error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, filter, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse[services.AuditLogView](nil, page.Page, page.Limit, 0)
	return &resp, nil
}

type mockOrderService struct {
	listOrdersFn    func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	markPaidFn      func(ctx context.Context, id string) (*models.Order, error)
	markDeliveredFn func(ctx context.Context, id string) (*models.Order, error)
	deleteOrderFn   func(ctx context.Context, id string) (*models.Order, error)
}

func (m *mockOrderService) ListOrders(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, page)
	}
	resp := pagination.NewPageResponse[models.Order](nil, 1, pagination.DefaultLimit, 0)
	return &resp, nil
}

func (m *mockOrderService) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	return &models.Order{Base: models.Base{ID: id}}, nil
}

func (m *mockOrderService) MarkPaid(ctx context.Context, id string) (*models.Order, error) {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, id)
	}
	return &models.Order{Base: models.Base{ID: id}, IsPaid: true}, nil
}

func (m *mockOrderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	if m.markDeliveredFn != nil {
		return m.markDeliveredFn(ctx, id)
	}
	return &models.Order{Base: models.Base{ID: id}, IsDelivered: true}, nil
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, id string) (*models.Order, error) {
	if m.deleteOrderFn != nil {
		return m.deleteOrderFn(ctx, id)
	}
	return &models.Order{Base: models.Base{ID: id}}, nil
}

// --- test helpers ---

const (
	adminID  = "0190f0c4-0000-7000-8000-00000000000a"
	otherID  = "0190f0c4-0000-7000-8000-00000000000b"
	orderID  = "0190f0c4-0000-7000-8000-00000000000c"
	testTTL  = time.Hour
	secretKV = "handler-test-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func testAdmin() *models.User {
	return &models.User{Base: models.Base{ID: adminID}, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
}

// injectPrincipal stands in for AuthMiddleware.
func injectPrincipal(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
