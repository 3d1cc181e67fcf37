package main

import (
	"io"
	"log"
	"net/http"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine, srv *server) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		event, err := webhook.ConstructEventWithOptions(payload, ctx.GetHeader("Stripe-Signature"), srv.webhookSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			pi, err := lib.PaymentIntentFromEvent(event.Data.Raw)
			if err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			txn, created, err := srv.ctrl.ConfirmFromWebhook(ctx.Request.Context(), pi)
			if err != nil {
				lib.LifecycleErrors.WithLabelValues("ConfirmFromWebhook", lifecycle.Code(err)).Inc()
				log.Printf("[Stripe] Could not record PaymentIntent %s: %s\n", pi.ID, err.Error())
				// a 5xx makes Stripe redeliver; business rejections will never succeed
				if lifecycle.HTTPStatus(err) >= http.StatusInternalServerError {
					ctx.Status(http.StatusInternalServerError)
					return
				}
				break
			}
			if created {
				log.Printf("[Stripe] Recorded transaction %s for booking %d\n", txn.ID.String(), txn.BookingID)
			}
		case "payment_intent.payment_failed":
			pi, err := lib.PaymentIntentFromEvent(event.Data.Raw)
			if err == nil {
				log.Printf("[Stripe] PaymentIntent %s for booking %d failed\n", pi.ID, pi.BookingID)
			}
		default:
			log.Printf("[StripeEvent] unhandled event type: %s\n", event.Type)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
