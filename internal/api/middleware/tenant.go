// internal/api/middleware/tenant.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	tenantHeader     = "X-Tenant-ID"
	tenantContextKey = "tenant_id"
)

// Tenant resolves the tenant for a request from the X-Tenant-ID header,
// falling back to defaultTenant when the header is absent.
func Tenant(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := strings.TrimSpace(c.GetHeader(tenantHeader))
		if tenant == "" {
			tenant = defaultTenant
		}
		c.Set(tenantContextKey, tenant)
		c.Next()
	}
}

// GetTenant reads the resolved tenant off the request context.
func GetTenant(c *gin.Context) string {
	return c.GetString(tenantContextKey)
}
