package main

import (
	"net/http"
	"ticketbari/src/middlewares"
	"ticketbari/src/types"

	"github.com/gin-gonic/gin"
)

func publicTicketHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	g.
		GET("/tickets/all", func(ctx *gin.Context) {
			var query types.TicketQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, err)
				return
			}
			tickets, count, err := srv.ctrl.ListTickets(ctx.Request.Context(), &query)
			if err != nil {
				respondError(ctx, "ListTickets", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": count})
		}).
		GET("/tickets/advertised", func(ctx *gin.Context) {
			tickets, err := srv.ctrl.AdvertisedTickets(ctx.Request.Context())
			if err != nil {
				respondError(ctx, "AdvertisedTickets", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": len(tickets)})
		}).
		GET("/tickets/:id", middlewares.OptionalAuth(srv.store), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			ticket, err := srv.ctrl.GetTicket(ctx.Request.Context(), optionalActor(ctx), params.ID)
			if err != nil {
				respondError(ctx, "GetTicket", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}

func ticketHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	vendorOnly := middlewares.RequireRole(types.ROLE_VENDOR)
	adminOnly := middlewares.RequireRole(types.ROLE_ADMIN)
	g.
		POST("/tickets", vendorOnly, func(ctx *gin.Context) {
			var body types.CreateTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			ticket, err := srv.ctrl.CreateTicket(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				respondError(ctx, "CreateTicket", err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": ticket})
		}).
		GET("/vendor/tickets", vendorOnly, func(ctx *gin.Context) {
			tickets, err := srv.ctrl.VendorTickets(ctx.Request.Context(), actorFrom(ctx))
			if err != nil {
				respondError(ctx, "VendorTickets", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": len(tickets)})
		}).
		GET("/admin/tickets", adminOnly, func(ctx *gin.Context) {
			tickets, err := srv.ctrl.AllTickets(ctx.Request.Context())
			if err != nil {
				respondError(ctx, "AllTickets", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": len(tickets)})
		}).
		PATCH("/tickets/:id/verify", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.VerifyTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			ticket, err := srv.ctrl.VerifyTicket(ctx.Request.Context(), params.ID, body.Status)
			if err != nil {
				respondError(ctx, "VerifyTicket", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		PATCH("/tickets/:id/advertise", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.AdvertiseTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			ticket, err := srv.ctrl.AdvertiseTicket(ctx.Request.Context(), params.ID, *body.Advertised)
			if err != nil {
				respondError(ctx, "AdvertiseTicket", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}
