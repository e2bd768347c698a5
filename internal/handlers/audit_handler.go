package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/services"
)

// AuditHandler serves the audit trail to administrators
type AuditHandler struct {
	auditService services.AuditServicer
	queryService services.AuditQueryServicer
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService services.AuditServicer, queryService services.AuditQueryServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService, queryService: queryService}
}

// AuditLogQuery holds the GET /logs query parameters
type AuditLogQuery struct {
	Action    string `form:"action" binding:"max=100"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Keyword   string `form:"keyword" binding:"max=200"`
	pagination.PageRequest
}

// AuditLogListResponse is one page of the audit trail
type AuditLogListResponse struct {
	Success bool                    `json:"success"`
	Count   int                     `json:"count"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Pages   int                     `json:"pages"`
	Logs    []services.AuditLogView `json:"logs"`
}

// CreateAuditLogRequest is a manually recorded audit entry. The actor is
// always the authenticated user.
type CreateAuditLogRequest struct {
	TargetUserID    *string  `json:"targetUserId" binding:"omitempty,uuid"`
	TargetOrderID   *string  `json:"targetOrderId" binding:"omitempty,uuid"`
	TargetProductID *string  `json:"targetProductId" binding:"omitempty,uuid"`
	Action          string   `json:"action" binding:"required,audit_action"`
	Notes           string   `json:"notes" binding:"max=2000"`
	Tags            []string `json:"tags" binding:"max=20,dive,max=50"`
}

// CreateAuditLogResponse wraps the stored entry
type CreateAuditLogResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Log     *models.AuditLog `json:"log"`
}

// GetLogs returns a filtered page of the audit trail, newest first
// @Summary     Query audit logs
// @Description Filters are optional and combined. action and keyword are case-insensitive substrings; dates are inclusive and a date-only endDate covers the whole day.
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       action    query string false "Action substring"
// @Param       startDate query string false "Earliest entry (YYYY-MM-DD or RFC 3339)"
// @Param       endDate   query string false "Latest entry (YYYY-MM-DD or RFC 3339)"
// @Param       keyword   query string false "Substring of notes or action"
// @Param       page      query int    false "Page number" minimum(1)
// @Param       limit     query int    false "Page size"   minimum(1) maximum(200)
// @Success     200 {object} AuditLogListResponse
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /logs [get]
func (h *AuditHandler) GetLogs(c *gin.Context) {
	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	start, err := parseDateParam(q.StartDate, false)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseDateParam(q.EndDate, true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.queryService.Query(c.Request.Context(), services.AuditLogFilter{
		Action:    q.Action,
		StartDate: start,
		EndDate:   end,
		Keyword:   q.Keyword,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuditLogListResponse{
		Success: true,
		Count:   len(result.Data),
		Total:   result.TotalItems,
		Page:    result.Page,
		Pages:   result.TotalPages,
		Logs:    result.Data,
	})
}

// CreateLog records a manual audit entry
// @Summary     Create an audit log entry
// @Tags        audit
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAuditLogRequest true "Audit entry"
// @Success     201 {object} CreateAuditLogResponse
// @Failure     400 {object} ErrorResponse "Invalid input or unknown action"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Audit write failed"
// @Router      /logs [post]
func (h *AuditHandler) CreateLog(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAuditLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var targets []models.TargetRef
	if req.TargetUserID != nil {
		targets = append(targets, models.UserTarget(*req.TargetUserID))
	}
	if req.TargetOrderID != nil {
		targets = append(targets, models.OrderTarget(*req.TargetOrderID))
	}
	if req.TargetProductID != nil {
		targets = append(targets, models.ProductTarget(*req.TargetProductID))
	}

	entry, err := h.auditService.Create(c.Request.Context(), services.AuditRecord{
		Action:  models.AuditAction(req.Action),
		ActorID: actor.ID,
		Targets: targets,
		Notes:   req.Notes,
		Tags:    req.Tags,
		Meta:    requestMeta(c),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateAuditLogResponse{
		Success: true,
		Message: "Audit log created successfully",
		Log:     entry,
	})
}
