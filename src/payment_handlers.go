package main

import (
	"net/http"
	"ticketbari/src/middlewares"
	"ticketbari/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	customerOnly := middlewares.RequireRole(types.ROLE_CUSTOMER)
	g.
		POST("/create-payment-intent", customerOnly, func(ctx *gin.Context) {
			var body types.CreatePaymentIntentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			pi, err := srv.ctrl.InitiatePayment(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				respondError(ctx, "InitiatePayment", err)
				return
			}
			ctx.JSON(http.StatusOK, types.PaymentIntentResponse{ClientSecret: pi.ClientSecret})
		}).
		POST("/payments", customerOnly, func(ctx *gin.Context) {
			var body types.CreatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			txn, created, err := srv.ctrl.ConfirmPayment(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				respondError(ctx, "ConfirmPayment", err)
				return
			}
			status := http.StatusOK
			if created {
				status = http.StatusCreated
			}
			ctx.JSON(status, gin.H{"data": txn})
		}).
		GET("/user/transactions", func(ctx *gin.Context) {
			txns, err := srv.ctrl.UserTransactions(ctx.Request.Context(), actorFrom(ctx))
			if err != nil {
				respondError(ctx, "UserTransactions", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		})
	return g
}
