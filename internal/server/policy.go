package server

import (
	"net/http"

	"storefront/internal/middleware"
)

const apiPrefix = "/api/v1"

func route(method, path string) string {
	return middleware.RouteKey(method, apiPrefix+path)
}

// AccessPolicy lists every protected route and the roles allowed to call it.
// A protected route registered without an entry here is denied to everyone.
func AccessPolicy() middleware.Policy {
	return middleware.Policy{
		route(http.MethodPost, "/auth/logout"):      middleware.AnyRole,
		route(http.MethodGet, "/profile"):           middleware.AnyRole,
		route(http.MethodPut, "/profile"):           middleware.AnyRole,
		route(http.MethodGet, "/profile/addresses"): middleware.AnyRole,
		route(http.MethodPut, "/profile/addresses"): middleware.AnyRole,

		route(http.MethodGet, "/users"):                    middleware.AdminOnly,
		route(http.MethodPut, "/users/:id/role"):           middleware.AdminOnly,
		route(http.MethodDelete, "/users/:id"):             middleware.AdminOnly,
		route(http.MethodPut, "/users/:id/reset-password"): middleware.AdminOnly,
		route(http.MethodPut, "/users/:id/edit"):           middleware.AdminOnly,
		route(http.MethodPut, "/users/:id/suspend"):        middleware.AdminOnly,
		route(http.MethodPut, "/users/:id/activate"):       middleware.AdminOnly,

		route(http.MethodGet, "/orders"):             middleware.StaffRoles,
		route(http.MethodPut, "/orders/:id/pay"):     middleware.StaffRoles,
		route(http.MethodPut, "/orders/:id/deliver"): middleware.StaffRoles,
		route(http.MethodDelete, "/orders/:id"):      middleware.AdminOnly,

		route(http.MethodPost, "/products"):       middleware.StaffRoles,
		route(http.MethodPut, "/products/:id"):    middleware.StaffRoles,
		route(http.MethodDelete, "/products/:id"): middleware.StaffRoles,

		route(http.MethodPost, "/categories"):       middleware.AdminOnly,
		route(http.MethodPut, "/categories/:id"):    middleware.AdminOnly,
		route(http.MethodDelete, "/categories/:id"): middleware.AdminOnly,

		route(http.MethodGet, "/logs"):  middleware.AdminOnly,
		route(http.MethodPost, "/logs"): middleware.AdminOnly,
	}
}
