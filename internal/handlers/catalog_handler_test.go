package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/services"
)

type mockProductService struct {
	createFn func(ctx context.Context, in services.ProductInput) (*models.Product, error)
}

func (m *mockProductService) CreateProduct(ctx context.Context, in services.ProductInput) (*models.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &models.Product{Base: models.Base{ID: orderID}, Name: in.Name}, nil
}

func (m *mockProductService) UpdateProduct(_ context.Context, id string, in services.ProductInput) (*models.Product, error) {
	return &models.Product{Base: models.Base{ID: id}, Name: in.Name}, nil
}

func (m *mockProductService) DeleteProduct(_ context.Context, id string) (*models.Product, error) {
	return &models.Product{Base: models.Base{ID: id}, Name: "Gone"}, nil
}

type mockCategoryService struct {
	createFn func(ctx context.Context, name, description string) (*models.Category, error)
}

func (m *mockCategoryService) ListCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, description)
	}
	return &models.Category{Name: name, Description: description}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, id string, name, _ *string) (*models.Category, error) {
	c := &models.Category{Base: models.Base{ID: id}}
	if name != nil {
		c.Name = *name
	}
	return c, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, id string) (*models.Category, error) {
	return &models.Category{Base: models.Base{ID: id}, Name: "Old"}, nil
}

func TestProductHandler(t *testing.T) {
	audit := &mockAuditService{}
	handler := NewProductHandler(&mockProductService{}, audit)
	r := gin.New()
	products := r.Group("/products", injectPrincipal(testAdmin()))
	products.POST("", handler.CreateProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)

	if rec := doRequest(r, "POST", "/products", `{"name":"Lamp","price":1299,"stock":3}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(r, "PUT", "/products/"+orderID, `{"name":"Lamp v2","price":1499}`); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(r, "DELETE", "/products/"+orderID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(r, "POST", "/products", `{"name":"Bad","price":-5}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price: expected 400, got %d", rec.Code)
	}

	records := audit.recorded()
	want := []models.AuditAction{models.ActionProductCreated, models.ActionProductUpdated, models.ActionProductDeleted}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if rec.Action != want[i] {
			t.Errorf("record %d: expected %s, got %s", i, want[i], rec.Action)
		}
		if len(rec.Targets) != 1 || rec.Targets[0].Kind != models.TargetProduct {
			t.Errorf("record %d: expected a product target, got %+v", i, rec.Targets)
		}
	}
}

func TestCategoryHandler(t *testing.T) {
	t.Run("writes are recorded with category tag and name", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewCategoryHandler(&mockCategoryService{}, audit)
		r := gin.New()
		r.GET("/categories", handler.ListCategories)
		categories := r.Group("/categories", injectPrincipal(testAdmin()))
		categories.POST("", handler.CreateCategory)
		categories.PUT("/:id", handler.UpdateCategory)
		categories.DELETE("/:id", handler.DeleteCategory)

		if rec := doRequest(r, "POST", "/categories", `{"name":"Lighting"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d", rec.Code)
		}
		if rec := doRequest(r, "PUT", "/categories/"+orderID, `{"name":"Lamps"}`); rec.Code != http.StatusOK {
			t.Fatalf("update: expected 200, got %d", rec.Code)
		}
		if rec := doRequest(r, "DELETE", "/categories/"+orderID, ""); rec.Code != http.StatusOK {
			t.Fatalf("delete: expected 200, got %d", rec.Code)
		}
		rec := doRequest(r, "GET", "/categories", "")
		if rec.Code != http.StatusOK || rec.Body.String() != "[]" {
			t.Fatalf("list: expected empty array, got %d %s", rec.Code, rec.Body.String())
		}

		records := audit.recorded()
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].Notes != `Category "Lighting" created` || records[0].Tags[0] != "category" {
			t.Errorf("unexpected record %+v", records[0])
		}
		if records[2].Action != models.ActionCategoryDeleted {
			t.Errorf("unexpected action %s", records[2].Action)
		}
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		svc := &mockCategoryService{
			createFn: func(context.Context, string, string) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := gin.New()
		r.POST("/categories", injectPrincipal(testAdmin()), handler.CreateCategory)

		rec := doRequest(r, "POST", "/categories", `{"name":"Lighting"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}
