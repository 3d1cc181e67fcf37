package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func dashboardHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	g.GET("/dashboard", func(ctx *gin.Context) {
		dashboard, err := srv.ctrl.Dashboard(ctx.Request.Context(), actorFrom(ctx))
		if err != nil {
			respondError(ctx, "Dashboard", err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": dashboard})
	})
	return g
}
