package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler serves catalog product administration for staff
type ProductHandler struct {
	productService services.ProductServicer
	auditService   services.AuditServicer
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService services.ProductServicer, auditService services.AuditServicer) *ProductHandler {
	return &ProductHandler{productService: productService, auditService: auditService}
}

// ProductRequest represents the writable product fields. Prices are in minor units.
type ProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Brand       string  `json:"brand" binding:"max=100"`
	Description string  `json:"description" binding:"max=5000"`
	Price       int64   `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Brand:       r.Brand,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
	}
}

func (h *ProductHandler) record(c *gin.Context, actor *models.User, action models.AuditAction, product *models.Product, verb string) {
	h.auditService.Record(c.Request.Context(), services.AuditRecord{
		Action:  action,
		ActorID: actor.ID,
		Targets: []models.TargetRef{models.ProductTarget(product.ID)},
		Notes:   fmt.Sprintf("Product %q %s", product.Name, verb),
		Tags:    []string{"products"},
		Meta:    requestMeta(c),
	})
}

// CreateProduct adds a product to the catalog
// @Summary     Create a product
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ProductRequest true "Product details"
// @Success     201 {object} models.Product
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	actor, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionProductCreated, product, "created")
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces a product's writable fields
// @Summary     Update a product
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Product ID"
// @Param       request body ProductRequest true "Product details"
// @Success     200 {object} models.Product
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
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

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionProductUpdated, product, "updated")
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog
// @Summary     Delete a product
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
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

	product, err := h.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.record(c, actor, models.ActionProductDeleted, product, "deleted")
	c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
