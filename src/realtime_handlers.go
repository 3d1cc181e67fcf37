package main

import (
	"io"
	"net/http"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"

	"github.com/gin-gonic/gin"
)

// realtimeHandlers mounts the pusher-js auth endpoint for private user channels.
func realtimeHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	g.POST("/pusher/auth", func(ctx *gin.Context) {
		if srv.realtime == nil {
			respondError(ctx, "PusherAuth", lifecycle.ErrNetworkFailure)
			return
		}
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			badRequest(ctx, err)
			return
		}
		res, err := lib.AuthorizeUserChannel(srv.realtime, actorFrom(ctx).ID, body)
		if err != nil {
			respondError(ctx, "PusherAuth", err)
			return
		}
		ctx.Data(http.StatusOK, "application/json", res)
	})
	return g
}
