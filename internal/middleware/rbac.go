package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

// RequireRoles allows the request when the actor holds any of roles.
// Super admins pass every check.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if actor.HasRole(models.RoleSuperAdmin) || actor.HasRole(roles...) {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireInstitution rejects actors that are not bound to an institution.
func RequireInstitution() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFromContext(c).Institution(); !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned"))
			c.Abort()
			return
		}
		c.Next()
	}
}
