package controllers

import (
	"context"
	"fmt"
	"ticketbari/src/lifecycle"
	"ticketbari/src/store"
	"ticketbari/src/types"
)

type Dashboard map[string]any

type dashboardFunc func(ctx context.Context, actor Actor) (Dashboard, error)

// Dashboard dispatches on the caller's role. Every figure comes from stored data.
func (c *Controller) Dashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	fn, ok := c.dashboards[actor.Role]
	if !ok {
		return nil, fmt.Errorf("no dashboard for role %q: %w", actor.Role, lifecycle.ErrForbidden)
	}
	return fn(ctx, actor)
}

func (c *Controller) customerDashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	bookings, err := c.Store.BookingStats(ctx, store.BookingFilter{UserID: actor.ID})
	if err != nil {
		return nil, err
	}
	spent, err := c.Store.Revenue(ctx, store.TransactionFilter{UserID: actor.ID})
	if err != nil {
		return nil, err
	}
	return Dashboard{
		"role":       actor.Role,
		"bookings":   bookings,
		"totalSpent": spent,
	}, nil
}

func (c *Controller) vendorDashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	tickets, err := c.Store.TicketStats(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	bookings, err := c.Store.BookingStats(ctx, store.BookingFilter{VendorID: actor.ID})
	if err != nil {
		return nil, err
	}
	revenue, err := c.Store.Revenue(ctx, store.TransactionFilter{VendorID: actor.ID})
	if err != nil {
		return nil, err
	}
	paid, err := c.Store.ListBookings(ctx, store.BookingFilter{VendorID: actor.ID, Status: types.BOOKING_PAID})
	if err != nil {
		return nil, err
	}
	// seats, not bookings
	var sold uint
	for _, b := range paid {
		sold += b.Quantity
	}
	return Dashboard{
		"role":         actor.Role,
		"tickets":      tickets,
		"bookings":     bookings,
		"totalRevenue": revenue,
		"ticketsSold":  sold,
		"paidBookings": bookings[types.BOOKING_PAID],
	}, nil
}

func (c *Controller) adminDashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	tickets, err := c.Store.TicketStats(ctx, 0)
	if err != nil {
		return nil, err
	}
	bookings, err := c.Store.BookingStats(ctx, store.BookingFilter{})
	if err != nil {
		return nil, err
	}
	revenue, err := c.Store.Revenue(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	advertised, err := c.Store.CountAdvertised(ctx)
	if err != nil {
		return nil, err
	}
	return Dashboard{
		"role":         actor.Role,
		"tickets":      tickets,
		"bookings":     bookings,
		"totalRevenue": revenue,
		"advertised":   advertised,
	}, nil
}
