package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/uuid"
)

const minPasswordLength = 8

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// LoadPrincipal fetches the live user record without the password hash.
// Soft-deleted users are not found.
func (s *userService) LoadPrincipal(ctx context.Context, id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.WithContext(ctx).Omit("password").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// CreateUser registers a new customer. Self-registration never grants staff roles.
func (s *userService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleCustomer)
}

func (s *userService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// EnsureAdmin creates an administrator or promotes an existing account.
// The bool result reports whether a new user was created.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string, role models.Role) (*models.User, bool, error) {
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidRole, "role must be admin or superadmin")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&existing).Error
	switch {
	case err == nil:
		user, err := s.ChangeRole(ctx, existing.ID, role)
		return user, false, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err := s.createUser(ctx, name, email, password, role)
		return user, err == nil, err
	default:
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// AttemptLogin verifies credentials and records the login time. Suspended
// accounts are refused even with the right password.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.IsSuspended {
		return nil, apperrors.ErrAccountSuspended
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListUsers returns users, newest first.
func (s *userService) ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	if err := db.Omit("password").
		Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(users, page.Page, page.Limit, total)
	return &resp, nil
}

// UpdateProfile changes name, email and/or password.
func (s *userService) UpdateProfile(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email cannot be empty")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		updates["email"] = email
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLength {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
		}
		hashed, err := hashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(ctx, id)
}

// UpdateAddresses replaces the user's delivery addresses. Blank entries are dropped.
func (s *userService) UpdateAddresses(ctx context.Context, id string, addresses []string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}

	user.Addresses = cleaned
	if err := s.db.WithContext(ctx).Model(user).Update("addresses", user.Addresses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// ChangeRole assigns a new role. It takes effect on the user's next request.
func (s *userService) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Role = role
	return user, nil
}

// DeleteUser soft-deletes a user. An actor can never delete their own account;
// that check runs before anything is read or written.
func (s *userService) DeleteUser(ctx context.Context, actorID, id string) (*models.User, error) {
	if actorID == id {
		return nil, apperrors.ErrSelfDelete
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// ResetPassword sets a new password chosen by an administrator.
func (s *userService) ResetPassword(ctx context.Context, id, newPassword string) (*models.User, error) {
	return s.UpdateProfile(ctx, id, UserUpdate{Password: &newPassword})
}

// SetSuspended suspends or reactivates a user.
func (s *userService) SetSuspended(ctx context.Context, id string, suspended bool) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_suspended", suspended).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.IsSuspended = suspended
	return user, nil
}

// ensureEmailFree fails with ErrDuplicateEmail when another user, including a
// soft-deleted one, already holds email.
func (s *userService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	q := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateEmail
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hashed), nil
}
