package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a customer with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleCustomer)
}

// CreateTestUserWithRole creates a user holding role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n), role)
}

// CreateTestUserWithEmail creates a user with the given email and role.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	n := nextID()
	category := &models.Category{
		Name: fmt.Sprintf("Test Category %d", n),
		Slug: fmt.Sprintf("test-category-%d", n),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestProduct creates a product.
func CreateTestProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:  fmt.Sprintf("Test Product %d", nextID()),
		Brand: "Acme",
		Price: 1999,
		Stock: 10,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestOrder creates an unpaid, undelivered order for userID.
func CreateTestOrder(t *testing.T, db *gorm.DB, userID string) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:      userID,
		OrderNumber: fmt.Sprintf("ORD-%06d", nextID()),
		TotalPrice:  4999,
		Status:      models.OrderStatusPending,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}

// CreateTestAuditLog inserts an audit entry directly, bypassing the recorder.
func CreateTestAuditLog(t *testing.T, db *gorm.DB, actorID string, action models.AuditAction, notes string, createdAt time.Time) *models.AuditLog {
	t.Helper()

	entry := &models.AuditLog{
		ActorID:   actorID,
		Action:    action,
		Notes:     notes,
		Tags:      []string{"test"},
		CreatedAt: createdAt,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test audit log: %v", err)
	}
	return entry
}
