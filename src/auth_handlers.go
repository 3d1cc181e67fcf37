package main

import (
	"net/http"
	"ticketbari/src/controllers"
	"ticketbari/src/middlewares"
	"ticketbari/src/types"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

func identityFromToken(token *auth.Token) controllers.Identity {
	id := controllers.Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	if role, ok := token.Claims["role"].(string); ok {
		id.Role = types.Role(role)
	}
	return id
}

func guestAuthRoutes(g *gin.Engine, srv *server) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.Use(middlewares.VerifyIdToken(srv.verifier))
	guest.
		POST("/login", func(ctx *gin.Context) {
			raw, _ := ctx.Get("firebase_token")
			token, _ := raw.(*auth.Token)
			if token == nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity", "code": "unauthenticated"})
				return
			}
			apiToken, user, err := srv.ctrl.Login(ctx.Request.Context(), identityFromToken(token))
			if err != nil {
				respondError(ctx, "AuthLogin", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"token": apiToken,
				"user":  user,
			})
		})
	return guest
}
