package controllers

import (
	"context"
	"log"
	"strconv"
	"ticketbari/src/config"
	"ticketbari/src/models"
	"ticketbari/src/store"
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, bookingID uint, amount decimal.Decimal, currency string) (*types.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*types.PaymentIntent, error)
}

type IntentCache interface {
	Get(ctx context.Context, bookingID uint) (*types.PaymentIntent, error)
	Set(ctx context.Context, bookingID uint, pi *types.PaymentIntent) error
	Delete(ctx context.Context, bookingID uint) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Publishers fans one event out to every publisher and returns the first error.
type Publishers []EventPublisher

func (ps Publishers) Publish(ctx context.Context, key string, payload any) error {
	var first error
	for _, p := range ps {
		if err := p.Publish(ctx, key, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    uint
	Role  types.Role
	Email string
}

// Controller is the server of record for tickets, bookings and payments.
// Intents and Events are optional.
type Controller struct {
	Store    store.Store
	Payments PaymentGateway
	Intents  IntentCache
	Events   EventPublisher
	Currency string
	Now      func() time.Time

	dashboards map[types.Role]dashboardFunc
}

func New(s store.Store, payments PaymentGateway) *Controller {
	c := &Controller{
		Store:    s,
		Payments: payments,
		Currency: config.PaymentCurrency(),
		Now:      time.Now,
	}
	c.dashboards = map[types.Role]dashboardFunc{
		types.ROLE_CUSTOMER: c.customerDashboard,
		types.ROLE_VENDOR:   c.vendorDashboard,
		types.ROLE_ADMIN:    c.adminDashboard,
	}
	return c
}

func (c *Controller) publish(ctx context.Context, eventType string, b *models.Booking, recipientID uint) {
	if c.Events == nil {
		return
	}
	event := types.BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		RecipientID: recipientID,
		Status:      string(b.Status),
		TicketTitle: b.TicketTitle,
		Amount:      b.TotalPrice.StringFixed(2),
		OccurredAt:  c.Now(),
	}
	if recipient, err := c.Store.GetUser(ctx, recipientID); err == nil {
		event.Email = recipient.Email
	}
	if err := c.Events.Publish(ctx, strconv.FormatUint(uint64(b.ID), 10), event); err != nil {
		log.Printf("[Events] Error publishing %s for booking %d: %s\n", eventType, b.ID, err.Error())
	}
}
