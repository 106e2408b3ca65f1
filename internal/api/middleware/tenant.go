package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

const contextScopeKey = "scope"

// TenantScope derives the data scope from the authenticated caller's claims.
// Must run after Auth. Superadmins are unscoped; everyone else must belong to
// an organization.
func TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleKey) == models.RoleSuperAdmin {
			c.Set(contextScopeKey, services.Scope{SuperAdmin: true})
			c.Next()
			return
		}

		orgID := c.GetUint(ContextOrgIDKey)
		if orgID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "your account is not associated with an organization"})
			return
		}
		c.Set(contextScopeKey, services.Scope{OrganizationID: orgID})
		c.Next()
	}
}

// GetScope returns the scope set by TenantScope, or an empty member scope.
func GetScope(c *gin.Context) services.Scope {
	if v, ok := c.Get(contextScopeKey); ok {
		if sc, ok := v.(services.Scope); ok {
			return sc
		}
	}
	return services.Scope{}
}
