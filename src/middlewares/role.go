package middlewares

import (
	"net/http"
	"slices"
	"ticketbari/src/types"

	"github.com/gin-gonic/gin"
)

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, _ := ctx.Get("role")
		r, ok := role.(types.Role)
		if !ok || !slices.Contains(roles, r) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role", "code": "forbidden"})
			return
		}
		ctx.Next()
	}
}
