package controllers

import (
	"context"
	"fmt"
	"log"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/store"
	"ticketbari/src/types"

	"github.com/shopspring/decimal"
)

// RequestBooking creates a pending booking against an approved, upcoming
// ticket. Inventory is only reserved when the booking is paid.
func (c *Controller) RequestBooking(ctx context.Context, actor Actor, body *types.CreateBookingRequestBody) (*models.Booking, error) {
	if actor.Role != types.ROLE_CUSTOMER {
		return nil, fmt.Errorf("only customers can book tickets: %w", lifecycle.ErrForbidden)
	}
	if body.Quantity == 0 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", lifecycle.ErrInvalidRequest)
	}
	if body.Status != "" {
		status, err := types.ParseBookingStatus(body.Status)
		if err != nil || status != types.BOOKING_PENDING {
			return nil, fmt.Errorf("new bookings start as pending, got %q: %w", body.Status, lifecycle.ErrInvalidRequest)
		}
	}
	ticket, err := c.Store.GetTicket(ctx, body.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.Verification != types.VERIFICATION_APPROVED || ticket.Departed(c.Now()) {
		return nil, fmt.Errorf("ticket %d is not open for booking: %w", ticket.ID, lifecycle.ErrTicketUnavailable)
	}
	if body.Quantity > ticket.QuantityRemaining {
		return nil, fmt.Errorf("requested %d, %d remaining: %w", body.Quantity, ticket.QuantityRemaining, lifecycle.ErrInsufficientInventory)
	}

	booking := &models.Booking{
		TicketID:      ticket.ID,
		UserID:        actor.ID,
		VendorID:      ticket.VendorID,
		Quantity:      body.Quantity,
		UnitPrice:     ticket.Price,
		TotalPrice:    ticket.Price.Mul(decimal.NewFromInt(int64(body.Quantity))),
		Status:        types.BOOKING_PENDING,
		DepartureDate: ticket.DepartureDate,
		DepartureTime: ticket.DepartureTime,
		DepartureAt:   ticket.DepartureAt,
		TicketTitle:   ticket.Title,
		TicketImage:   ticket.Image,
		From:          ticket.From,
		To:            ticket.To,
	}
	if err := c.Store.CreateBooking(ctx, booking); err != nil {
		log.Printf("Error creating booking: %s\n", err.Error())
		return nil, err
	}
	c.publish(ctx, types.EVENT_BOOKING_REQUESTED, booking, booking.VendorID)
	return booking, nil
}

// GetBooking is visible to the customer who made it, the ticket's vendor and admins.
func (c *Controller) GetBooking(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	booking, err := c.Store.GetBooking(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !canView(actor, booking) {
		return nil, fmt.Errorf("booking %d: %w", id, lifecycle.ErrForbidden)
	}
	return c.present(booking), nil
}

// RespondToBooking applies a vendor decision to a pending booking. The
// update is conditional on the row still being pending, so of two racing
// decisions exactly one wins.
func (c *Controller) RespondToBooking(ctx context.Context, actor Actor, id uint, decision types.Decision) (*models.Booking, error) {
	target, err := decision.Target()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), lifecycle.ErrInvalidRequest)
	}
	booking, err := c.Store.GetBooking(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if actor.Role != types.ROLE_VENDOR || booking.VendorID != actor.ID {
		return nil, fmt.Errorf("booking %d belongs to another vendor: %w", id, lifecycle.ErrForbidden)
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("booking %d is %s: %w", id, booking.Status, lifecycle.ErrInvalidTransition)
	}
	applied, err := c.Store.TransitionBooking(ctx, id, types.BOOKING_PENDING, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("booking %d was already decided: %w", id, lifecycle.ErrInvalidTransition)
	}
	lib.BookingTransitions.WithLabelValues(string(types.BOOKING_PENDING), string(target)).Inc()

	booking.Status = target
	eventType := types.EVENT_BOOKING_ACCEPTED
	if target == types.BOOKING_REJECTED {
		eventType = types.EVENT_BOOKING_REJECTED
	}
	c.publish(ctx, eventType, booking, booking.UserID)
	return c.present(booking), nil
}

func (c *Controller) UserBookings(ctx context.Context, actor Actor) ([]models.Booking, error) {
	bookings, err := c.Store.ListBookings(ctx, store.BookingFilter{UserID: actor.ID})
	if err != nil {
		return nil, err
	}
	return c.presentAll(bookings), nil
}

func (c *Controller) VendorBookings(ctx context.Context, actor Actor, status types.BookingStatus) ([]models.Booking, error) {
	bookings, err := c.Store.ListBookings(ctx, store.BookingFilter{VendorID: actor.ID, Status: status})
	if err != nil {
		return nil, err
	}
	return c.presentAll(bookings), nil
}

func canView(actor Actor, b *models.Booking) bool {
	switch actor.Role {
	case types.ROLE_ADMIN:
		return true
	case types.ROLE_VENDOR:
		return b.VendorID == actor.ID
	}
	return b.UserID == actor.ID
}

// present applies the expired overlay for responses. Stored status is untouched.
func (c *Controller) present(b *models.Booking) *models.Booking {
	b.Status = b.EffectiveStatus(c.Now())
	return b
}

func (c *Controller) presentAll(bookings []models.Booking) []models.Booking {
	for i := range bookings {
		c.present(&bookings[i])
	}
	return bookings
}
