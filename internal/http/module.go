// Package http holds what the funnel modules (leads, tag mappings,
// conversations, exports) share when mounting their routes.
package http

import "github.com/gin-gonic/gin"

// TenantParam is the path parameter carrying the tenant being queried.
const TenantParam = "tenantId"

// Module is a funnel feature that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups built by the router. Every group
// already has authentication and rate limiting applied.
type RouterContext struct {
	// Protected serves tenant-independent lookups such as /leads/classify.
	Protected *gin.RouterGroup
	// Tenant is /api/v1/tenants/:tenantId; callers must belong to the
	// tenant. Tag dictionary writes add an admin role check on top.
	Tenant *gin.RouterGroup
}
