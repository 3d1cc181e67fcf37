package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"ticketbari/src/config"
	"ticketbari/src/lib"
	awslib "ticketbari/src/lib/aws"
	"ticketbari/src/lifecycle"
	"ticketbari/src/middlewares"
	"ticketbari/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func bookingHandlers(g *gin.RouterGroup, srv *server) *gin.RouterGroup {
	g.
		POST("/booking", middlewares.RequireRole(types.ROLE_CUSTOMER), func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			booking, err := srv.ctrl.RequestBooking(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				respondError(ctx, "RequestBooking", err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			booking, err := srv.ctrl.GetBooking(ctx.Request.Context(), actorFrom(ctx), params.ID)
			if err != nil {
				respondError(ctx, "GetBooking", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PATCH("/bookings/:id/status", middlewares.RequireRole(types.ROLE_VENDOR), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			decision, err := types.DecisionFromStatus(body.Status)
			if err != nil {
				respondError(ctx, "RespondToBooking", fmt.Errorf("%s: %w", err.Error(), lifecycle.ErrInvalidRequest))
				return
			}
			booking, err := srv.ctrl.RespondToBooking(ctx.Request.Context(), actorFrom(ctx), params.ID, decision)
			if err != nil {
				respondError(ctx, "RespondToBooking", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		GET("/bookings/:id/ticket-code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			code, booking, err := srv.ctrl.TicketCode(ctx.Request.Context(), actorFrom(ctx), params.ID)
			if err != nil {
				respondError(ctx, "TicketCode", err)
				return
			}
			tempdir := config.GetEnv("TEMP_DIR", os.TempDir())
			filePath := path.Join(tempdir, fmt.Sprintf("eticket-%d-%s.jpeg", booking.ID, uuid.NewString()))
			if err := lib.SaveQRCode(code, filePath); err != nil {
				respondError(ctx, "TicketCode", err)
				return
			}
			defer func() {
				if err := os.Remove(filePath); err != nil {
					log.Printf("Could not remove %s: %s\n", filePath, err.Error())
				}
			}()
			if awslib.S3Enabled() {
				url, err := awslib.S3UploadAsset(ctx.Request.Context(), fmt.Sprintf("etickets/%d.jpeg", booking.ID), filePath, "image/jpeg")
				if err != nil {
					respondError(ctx, "TicketCode", fmt.Errorf("uploading e-ticket: %s: %w", err.Error(), lifecycle.ErrNetworkFailure))
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"code": code, "url": url}})
				return
			}
			ctx.FileAttachment(filePath, fmt.Sprintf("eticket-%d.jpeg", booking.ID))
		}).
		GET("/vendor/bookings", middlewares.RequireRole(types.ROLE_VENDOR), func(ctx *gin.Context) {
			var query struct {
				Status string `form:"status"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, err)
				return
			}
			var status types.BookingStatus
			if query.Status != "" {
				parsed, err := types.ParseBookingStatus(query.Status)
				if err != nil {
					respondError(ctx, "VendorBookings", fmt.Errorf("%s: %w", err.Error(), lifecycle.ErrInvalidRequest))
					return
				}
				status = parsed
			}
			bookings, err := srv.ctrl.VendorBookings(ctx.Request.Context(), actorFrom(ctx), status)
			if err != nil {
				respondError(ctx, "VendorBookings", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/user/bookings", func(ctx *gin.Context) {
			bookings, err := srv.ctrl.UserBookings(ctx.Request.Context(), actorFrom(ctx))
			if err != nil {
				respondError(ctx, "UserBookings", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		})
	return g
}
