package middlewares

import (
	"log"
	"net/http"
	"strings"
	"ticketbari/src/store"
	"ticketbari/src/utils"

	"github.com/gin-gonic/gin"
)

func unauthorized(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthenticated"})
}

// AuthMiddleware accepts API tokens issued by /auth/login and loads the
// caller. The role always comes from the stored user, not the token.
func AuthMiddleware(s store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearerToken := ctx.Request.Header.Get("Authorization")
		reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
		if !ok || strings.TrimSpace(reqToken) == "" {
			unauthorized(ctx, "missing bearer token")
			return
		}
		id, _, err := utils.ParseJWT(strings.TrimSpace(reqToken))
		if err != nil {
			log.Printf("token error: %s\n", err.Error())
			unauthorized(ctx, "invalid token")
			return
		}
		user, err := s.GetUser(ctx.Request.Context(), id)
		if err != nil {
			log.Printf("token error: user %d: %s\n", id, err.Error())
			unauthorized(ctx, "unknown user")
			return
		}
		ctx.Set("email", user.Email)
		ctx.Set("id", user.ID)
		ctx.Set("uid", user.UID)
		ctx.Set("role", user.Role)
	}
}

// OptionalAuth loads the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(s store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqToken, ok := strings.CutPrefix(ctx.Request.Header.Get("Authorization"), "Bearer ")
		if !ok {
			return
		}
		id, _, err := utils.ParseJWT(strings.TrimSpace(reqToken))
		if err != nil {
			return
		}
		user, err := s.GetUser(ctx.Request.Context(), id)
		if err != nil {
			return
		}
		ctx.Set("email", user.Email)
		ctx.Set("id", user.ID)
		ctx.Set("uid", user.UID)
		ctx.Set("role", user.Role)
	}
}
