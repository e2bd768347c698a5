package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/services"
)

// UserHandler serves user administration for administrators
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// ChangeRoleRequest carries the new role
type ChangeRoleRequest struct {
	Role models.Role `json:"role" binding:"required,user_role"`
}

// ResetPasswordRequest carries the password chosen by the administrator
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// EditUserRequest changes a user's name or email
type EditUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
}

// UserListResponse is one page of users
type UserListResponse struct {
	Data       []UserResponse `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

func (h *UserHandler) record(c *gin.Context, actor *models.User, action models.AuditAction, target *models.User, notes string) {
	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  action,
		ActorID: actor.ID,
		Targets: []models.TargetRef{models.UserTarget(target.ID)},
		Notes:   notes,
		Tags:    []string{"users"},
		Meta:    requestMeta(c),
	})
}

// ListUsers returns a page of users
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number" minimum(1)
// @Param       limit query int false "Page size"   minimum(1) maximum(200)
// @Success     200 {object} UserListResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	users := make([]UserResponse, len(result.Data))
	for i := range result.Data {
		users[i] = toUserResponse(&result.Data[i])
	}
	c.JSON(http.StatusOK, UserListResponse{
		Data:       users,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// ChangeRole assigns a new role to a user
// @Summary     Change a user's role
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body ChangeRoleRequest true "New role"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid role"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), id, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionChangeRole, user, fmt.Sprintf("Changed role to %s", req.Role))
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// DeleteUser soft-deletes a user. Administrators cannot delete themselves.
// @Summary     Delete a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Forbidden or self-deletion"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.DeleteUser(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionDelete, user, fmt.Sprintf("Deleted user %s", user.Email))
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// ResetPassword sets a new password for a user
// @Summary     Reset a user's password
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "User ID"
// @Param       request body ResetPasswordRequest true "New password"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/reset-password [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.ResetPassword(c.Request.Context(), id, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionResetPassword, user, "Password reset by administrator")
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}

// EditUser changes a user's name or email
// @Summary     Edit a user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "User ID"
// @Param       request body EditUserRequest true "Fields to change"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Router      /users/{id}/edit [put]
func (h *UserHandler) EditUser(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), id, services.UserUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		respondWithError(c, err)
		return
	}

	if notes := editNotes(req); notes != "" {
		h.record(c, actor, models.ActionCustom, user, notes)
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func editNotes(req EditUserRequest) string {
	var fields []string
	if req.Name != nil {
		fields = append(fields, "name")
	}
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if len(fields) == 0 {
		return ""
	}
	return "Edited " + strings.Join(fields, "/")
}

// Suspend blocks a user from signing in or using existing tokens
// @Summary     Suspend a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} UserResponse
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/suspend [put]
func (h *UserHandler) Suspend(c *gin.Context) {
	h.setSuspended(c, true)
}

// Activate lifts a suspension
// @Summary     Activate a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} UserResponse
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/activate [put]
func (h *UserHandler) Activate(c *gin.Context) {
	h.setSuspended(c, false)
}

func (h *UserHandler) setSuspended(c *gin.Context, suspended bool) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.SetSuspended(c.Request.Context(), id, suspended)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action, notes := models.ActionActivate, "Account activated"
	if suspended {
		action, notes = models.ActionSuspend, "Account suspended"
	}
	h.record(c, actor, action, user, notes)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
