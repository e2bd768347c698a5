package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/services"
)

func setupUserRouter(handler *UserHandler, principal *models.User) *gin.Engine {
	r := gin.New()
	users := r.Group("/users", injectPrincipal(principal))
	users.GET("", handler.ListUsers)
	users.PUT("/:id/role", handler.ChangeRole)
	users.DELETE("/:id", handler.DeleteUser)
	users.PUT("/:id/reset-password", handler.ResetPassword)
	users.PUT("/:id/edit", handler.EditUser)
	users.PUT("/:id/suspend", handler.Suspend)
	users.PUT("/:id/activate", handler.Activate)
	return r
}

func TestUserHandler_ChangeRole(t *testing.T) {
	t.Run("records change-role with target", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewUserHandler(&mockUserService{}, audit)
		r := setupUserRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/users/"+otherID+"/role", `{"role":"shopmanager"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		records := audit.recorded()
		if len(records) != 1 {
			t.Fatalf("expected one record, got %d", len(records))
		}
		got := records[0]
		if got.Action != models.ActionChangeRole || got.ActorID != adminID {
			t.Errorf("unexpected record %+v", got)
		}
		if len(got.Targets) != 1 || got.Targets[0] != models.UserTarget(otherID) {
			t.Errorf("unexpected targets %+v", got.Targets)
		}
		if got.Notes != "Changed role to shopmanager" {
			t.Errorf("unexpected notes %q", got.Notes)
		}
	})

	t.Run("unknown role is rejected before the service", func(t *testing.T) {
		called := false
		userSvc := &mockUserService{
			changeRoleFn: func(context.Context, string, models.Role) (*models.User, error) {
				called = true
				return nil, nil
			},
		}
		handler := NewUserHandler(userSvc, &mockAuditService{})
		r := setupUserRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/users/"+otherID+"/role", `{"role":"owner"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_ROLE")
		if called {
			t.Error("service must not be called")
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		handler := NewUserHandler(&mockUserService{}, &mockAuditService{})
		r := setupUserRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/users/42/role", `{"role":"admin"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Run("self delete is forbidden and not recorded", func(t *testing.T) {
		audit := &mockAuditService{}
		userSvc := &mockUserService{
			deleteUserFn: func(_ context.Context, actorID, id string) (*models.User, error) {
				if actorID == id {
					return nil, apperrors.ErrSelfDelete
				}
				return &models.User{Base: models.Base{ID: id}}, nil
			},
		}
		handler := NewUserHandler(userSvc, audit)
		r := setupUserRouter(handler, testAdmin())

		for _, id := range []string{adminID, strings.ToUpper(adminID)} {
			rec := doRequest(r, "DELETE", "/users/"+id, "")

			if rec.Code != http.StatusForbidden {
				t.Fatalf("%s: expected 403, got %d", id, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "SELF_DELETE_FORBIDDEN")
		}
		if len(audit.recorded()) != 0 {
			t.Error("a refused delete must not be recorded")
		}
	})

	t.Run("deleting another user is recorded", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewUserHandler(&mockUserService{}, audit)
		r := setupUserRouter(handler, testAdmin())

		rec := doRequest(r, "DELETE", "/users/"+otherID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		records := audit.recorded()
		if len(records) != 1 || records[0].Action != models.ActionDelete {
			t.Fatalf("unexpected records %+v", records)
		}
	})
}

func TestUserHandler_SuspendActivate(t *testing.T) {
	tests := []struct {
		path   string
		action models.AuditAction
	}{
		{path: "/suspend", action: models.ActionSuspend},
		{path: "/activate", action: models.ActionActivate},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			audit := &mockAuditService{}
			handler := NewUserHandler(&mockUserService{}, audit)
			r := setupUserRouter(handler, testAdmin())

			rec := doRequest(r, "PUT", "/users/"+otherID+tt.path, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			records := audit.recorded()
			if len(records) != 1 || records[0].Action != tt.action {
				t.Fatalf("unexpected records %+v", records)
			}
		})
	}
}

func TestUserHandler_ResetPassword(t *testing.T) {
	audit := &mockAuditService{}
	var gotPassword string
	userSvc := &mockUserService{
		resetPasswordFn: func(_ context.Context, id, pw string) (*models.User, error) {
			gotPassword = pw
			return &models.User{Base: models.Base{ID: id}}, nil
		},
	}
	handler := NewUserHandler(userSvc, audit)
	r := setupUserRouter(handler, testAdmin())

	rec := doRequest(r, "PUT", "/users/"+otherID+"/reset-password", `{"password":"a-new-password"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPassword != "a-new-password" {
		t.Errorf("unexpected password passed to service")
	}
	records := audit.recorded()
	if len(records) != 1 || records[0].Action != models.ActionResetPassword {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestUserHandler_EditUser(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantNotes string
	}{
		{name: "name only", body: `{"name":"Renamed"}`, wantNotes: "Edited name"},
		{name: "email only", body: `{"email":"new@example.com"}`, wantNotes: "Edited email"},
		{name: "both", body: `{"name":"Renamed","email":"new@example.com"}`, wantNotes: "Edited name/email"},
		{name: "nothing sent", body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &mockAuditService{}
			handler := NewUserHandler(&mockUserService{}, audit)
			r := setupUserRouter(handler, testAdmin())

			rec := doRequest(r, "PUT", "/users/"+otherID+"/edit", tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			records := audit.recorded()
			if tt.wantNotes == "" {
				if len(records) != 0 {
					t.Fatalf("expected no records, got %+v", records)
				}
				return
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %+v", records)
			}
			got := records[0]
			if got.Action != models.ActionCustom || got.Notes != tt.wantNotes {
				t.Errorf("unexpected record %+v", got)
			}
			if got.ActorID != testAdmin().ID {
				t.Errorf("actor = %q, want %q", got.ActorID, testAdmin().ID)
			}
			if len(got.Targets) != 1 || got.Targets[0] != models.UserTarget(otherID) {
				t.Errorf("unexpected targets %+v", got.Targets)
			}
		})
	}

	t.Run("failed edit is not recorded", func(t *testing.T) {
		audit := &mockAuditService{}
		userSvc := &mockUserService{
			updateProfileFn: func(context.Context, string, services.UserUpdate) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		handler := NewUserHandler(userSvc, audit)
		r := setupUserRouter(handler, testAdmin())

		rec := doRequest(r, "PUT", "/users/"+otherID+"/edit", `{"email":"taken@example.com"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if len(audit.recorded()) != 0 {
			t.Fatalf("unexpected records %+v", audit.recorded())
		}
	})
}
