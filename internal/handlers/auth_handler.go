package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	userService  services.UserServicer
	tokens       *middleware.TokenManager
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens *middleware.TokenManager, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

// AddressesRequest replaces the delivery addresses
type AddressesRequest struct {
	Addresses []string `json:"addresses" binding:"max=10,dive,max=500"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	IsSuspended bool        `json:"is_suspended"`
	Addresses   []string    `json:"addresses"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AddressesResponse lists the principal's delivery addresses
type AddressesResponse struct {
	Addresses []string `json:"addresses"`
}

func toUserResponse(user *models.User) UserResponse {
	addresses := []string(user.Addresses)
	if addresses == nil {
		addresses = []string{}
	}
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		IsSuspended: user.IsSuspended,
		Addresses:   addresses,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

func (h *AuthHandler) authResponse(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new customer account. Staff roles are only granted by administrators.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.authResponse(c, http.StatusCreated, user)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials or suspended account"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.AttemptLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	meta := requestMeta(c)
	meta.ActorRole = user.Role
	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  models.ActionLogin,
		ActorID: user.ID,
		Targets: []models.TargetRef{models.UserTarget(user.ID)},
		Notes:   "User logged in",
		Tags:    []string{"auth"},
		Meta:    meta,
	})

	h.authResponse(c, http.StatusOK, user)
}

// Logout records the end of a session. Tokens stay valid until they expire.
// @Summary     Logout user
// @Description Record a logout for the authenticated user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  models.ActionLogout,
		ActorID: user.ID,
		Targets: []models.TargetRef{models.UserTarget(user.ID)},
		Notes:   "User logged out",
		Tags:    []string{"auth"},
		Meta:    requestMeta(c),
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), principal.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// UpdateProfile changes the authenticated user's name, email or password
// @Summary     Update user profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to change"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), principal.ID, services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// GetAddresses lists the authenticated user's delivery addresses
// @Summary     Get delivery addresses
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AddressesResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile/addresses [get]
func (h *AuthHandler) GetAddresses(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), principal.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AddressesResponse{Addresses: toUserResponse(user).Addresses})
}

// UpdateAddresses replaces the authenticated user's delivery addresses
// @Summary     Replace delivery addresses
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddressesRequest true "New address list"
// @Success     200 {object} AddressesResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile/addresses [put]
func (h *AuthHandler) UpdateAddresses(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateAddresses(c.Request.Context(), principal.ID, req.Addresses)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  models.ActionUpdateAddress,
		ActorID: principal.ID,
		Targets: []models.TargetRef{models.UserTarget(principal.ID)},
		Notes:   "Updated delivery addresses",
		Tags:    []string{"profile"},
		Meta:    requestMeta(c),
	})

	c.JSON(http.StatusOK, AddressesResponse{Addresses: toUserResponse(user).Addresses})
}
