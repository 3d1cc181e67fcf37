package middlewares

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// VerifyIdToken checks a Firebase ID token and stores the decoded token
// under "firebase_token" for the login handler.
func VerifyIdToken(verifier IDTokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		idToken := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer "))
		if idToken == "" {
			err := errors.New("missing authorization header")
			log.Printf("Check failed: %s\n", err.Error())
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "unauthenticated"})
			return
		}
		if verifier == nil {
			log.Println("Error retrieving Firebase Auth instance: not configured")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication unavailable", "code": "network_failure"})
			return
		}
		token, err := verifier.VerifyIDToken(ctx.Request.Context(), idToken)
		if err != nil {
			log.Printf("Failed to verify ID token: %s\n", err.Error())
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Failed to verify ID token", "code": "unauthenticated"})
			return
		}
		ctx.Set("uid", token.UID)
		ctx.Set("firebase_token", token)
	}
}
