// Package server assembles the HTTP router: middleware chain, public and
// protected route groups, and the access policy guarding the latter.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "storefront/internal/docs" // swagger docs
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// Deps carries everything the router needs.
type Deps struct {
	Tokens        *middleware.TokenManager
	Policy        middleware.Policy
	MetricsAPIKey string

	Users      services.UserServicer
	Orders     services.OrderServicer
	Products   services.ProductServicer
	Categories services.CategoryServicer
	Audit      services.AuditServicer
	AuditQuery services.AuditQueryServicer
}

// NewRouter builds the gin engine. A nil Policy falls back to AccessPolicy.
func NewRouter(deps Deps) *gin.Engine {
	policy := deps.Policy
	if policy == nil {
		policy = AccessPolicy()
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Audit)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Audit)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Audit)
	productHandler := handlers.NewProductHandler(deps.Products, deps.Audit)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories, deps.Audit)
	auditHandler := handlers.NewAuditHandler(deps.Audit, deps.AuditQuery)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.PrometheusMiddleware())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", middleware.APIKeyMiddleware(deps.MetricsAPIKey), metrics.Handler())

	v1 := router.Group(apiPrefix)

	// Public routes
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/categories", categoryHandler.ListCategories)

	// Protected routes: authenticate, then check the route's allow-list
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.Users))
	protected.Use(middleware.RoleGate(policy))

	protected.POST("/auth/logout", authHandler.Logout)

	profile := protected.Group("/profile")
	profile.GET("", authHandler.GetProfile)
	profile.PUT("", authHandler.UpdateProfile)
	profile.GET("/addresses", authHandler.GetAddresses)
	profile.PUT("/addresses", authHandler.UpdateAddresses)

	users := protected.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.PUT("/:id/role", userHandler.ChangeRole)
	users.DELETE("/:id", userHandler.DeleteUser)
	users.PUT("/:id/reset-password", userHandler.ResetPassword)
	users.PUT("/:id/edit", userHandler.EditUser)
	users.PUT("/:id/suspend", userHandler.Suspend)
	users.PUT("/:id/activate", userHandler.Activate)

	orders := protected.Group("/orders")
	orders.GET("", orderHandler.ListOrders)
	orders.PUT("/:id/pay", orderHandler.MarkPaid)
	orders.PUT("/:id/deliver", orderHandler.MarkDelivered)
	orders.DELETE("/:id", orderHandler.DeleteOrder)

	products := protected.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	logs := protected.Group("/logs")
	logs.GET("", auditHandler.GetLogs)
	logs.POST("", auditHandler.CreateLog)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
