package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swachhrail/coachclean-app/utils"
)

// RequireRole allows only the listed roles through. An authenticated caller
// with a different role gets 403, never a redirect; the client decides how to
// render the denial.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("invalid role format"))
			c.Abort()
			return
		}

		if _, ok := allowed[role]; !ok {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", roles[0]))
			c.Abort()
			return
		}

		c.Next()
	}
}
