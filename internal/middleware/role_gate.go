package middleware

import (
	"slices"
	"sort"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// Common allow-lists.
var (
	AdminOnly  = []models.Role{models.RoleAdmin, models.RoleSuperAdmin}
	StaffRoles = []models.Role{models.RoleShopManager, models.RoleAdmin, models.RoleSuperAdmin}
	AnyRole    = []models.Role{models.RoleCustomer, models.RoleShopManager, models.RoleAdmin, models.RoleSuperAdmin}
)

// Policy maps a route ("METHOD /full/path", as registered with gin) to the
// roles allowed to call it.
type Policy map[string][]models.Role

// RouteKey builds the Policy key for a method and route template.
func RouteKey(method, fullPath string) string {
	return method + " " + fullPath
}

// Allowed returns the allow-list for a route and whether one is declared.
func (p Policy) Allowed(method, fullPath string) ([]models.Role, bool) {
	roles, ok := p[RouteKey(method, fullPath)]
	return roles, ok
}

// Permits reports whether role may call the route. Undeclared routes permit nobody.
func (p Policy) Permits(method, fullPath string, role models.Role) bool {
	roles, ok := p.Allowed(method, fullPath)
	return ok && slices.Contains(roles, role)
}

// Routes returns every declared route key in sorted order.
func (p Policy) Routes() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RoleGate enforces policy for the matched route. It must run after
// AuthMiddleware. A route missing from the policy is denied.
func RoleGate(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		route := c.FullPath()
		allowed, declared := policy.Allowed(c.Request.Method, route)
		if !declared {
			logger.Get().Errorw("route has no access policy",
				"method", c.Request.Method,
				"route", route,
			)
			metrics.AuthzDenialsTotal.WithLabelValues(RouteKey(c.Request.Method, route)).Inc()
			abortWithError(c, apperrors.Forbidden(nil, string(principal.Role)))
			return
		}

		if !slices.Contains(allowed, principal.Role) {
			metrics.AuthzDenialsTotal.WithLabelValues(RouteKey(c.Request.Method, route)).Inc()
			logger.Get().Infow("access denied",
				"user_id", principal.ID,
				"role", principal.Role,
				"route", RouteKey(c.Request.Method, route),
			)
			abortWithError(c, apperrors.Forbidden(roleNames(allowed), string(principal.Role)))
			return
		}

		c.Next()
	}
}

func roleNames(roles []models.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}
