package controllers

import (
	"context"
	"fmt"
	"log"
	"ticketbari/src/config"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/store"
	"ticketbari/src/types"

	"github.com/gosimple/slug"
)

const defaultPageSize = 9

func (c *Controller) CreateTicket(ctx context.Context, actor Actor, body *types.CreateTicketRequestBody) (*models.Ticket, error) {
	if actor.Role != types.ROLE_VENDOR {
		return nil, fmt.Errorf("only vendors can list tickets: %w", lifecycle.ErrForbidden)
	}
	if !body.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", lifecycle.ErrInvalidRequest)
	}
	departure, err := config.ParseDeparture(body.DepartureDate, body.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("departure: %s: %w", err.Error(), lifecycle.ErrInvalidRequest)
	}
	if !departure.After(c.Now()) {
		return nil, fmt.Errorf("departure must be in the future: %w", lifecycle.ErrInvalidRequest)
	}
	perks := body.Perks
	if perks == nil {
		perks = []string{}
	}
	ticket := &models.Ticket{
		Title:             body.Title,
		Slug:              slug.Make(fmt.Sprintf("%s %s %s", body.Title, body.From, body.To)),
		From:              body.From,
		To:                body.To,
		Transport:         body.Transport,
		Price:             body.Price.Round(2),
		Quantity:          body.Quantity,
		QuantityRemaining: body.Quantity,
		DepartureDate:     body.DepartureDate,
		DepartureTime:     body.DepartureTime,
		DepartureAt:       departure.UTC(),
		Perks:             perks,
		Image:             body.Image,
		VendorID:          actor.ID,
		Verification:      types.VERIFICATION_PENDING,
	}
	if err := c.Store.CreateTicket(ctx, ticket); err != nil {
		log.Printf("Error creating ticket: %s\n", err.Error())
		return nil, err
	}
	return ticket, nil
}

// GetTicket hides unapproved listings from everyone but their vendor and admins.
func (c *Controller) GetTicket(ctx context.Context, actor *Actor, id uint) (*models.Ticket, error) {
	ticket, err := c.Store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Verification == types.VERIFICATION_APPROVED {
		return ticket, nil
	}
	if actor != nil && (actor.Role == types.ROLE_ADMIN || actor.ID == ticket.VendorID) {
		return ticket, nil
	}
	return nil, fmt.Errorf("ticket %d: %w", id, lifecycle.ErrNotFound)
}

func (c *Controller) ListTickets(ctx context.Context, q *types.TicketQueryFilters) ([]models.Ticket, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return c.Store.ListTickets(ctx, store.TicketFilter{
		Verification:   types.VERIFICATION_APPROVED,
		From:           q.From,
		To:             q.To,
		Transport:      q.Transport,
		DepartingAfter: c.Now(),
		Sort:           q.Sort,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	})
}

func (c *Controller) AdvertisedTickets(ctx context.Context) ([]models.Ticket, error) {
	advertised := true
	tickets, _, err := c.Store.ListTickets(ctx, store.TicketFilter{
		Verification: types.VERIFICATION_APPROVED,
		Advertised:   &advertised,
		Limit:        types.MaxAdvertised,
	})
	return tickets, err
}

func (c *Controller) VendorTickets(ctx context.Context, actor Actor) ([]models.Ticket, error) {
	tickets, _, err := c.Store.ListTickets(ctx, store.TicketFilter{VendorID: actor.ID})
	return tickets, err
}

func (c *Controller) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, _, err := c.Store.ListTickets(ctx, store.TicketFilter{})
	return tickets, err
}

// VerifyTicket moves a listing out of pending exactly once.
func (c *Controller) VerifyTicket(ctx context.Context, id uint, status types.VerificationStatus) (*models.Ticket, error) {
	if status != types.VERIFICATION_APPROVED && status != types.VERIFICATION_REJECTED {
		return nil, fmt.Errorf("verification status %q: %w", status, lifecycle.ErrInvalidRequest)
	}
	ticket, err := c.Store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	applied, err := c.Store.SetTicketVerification(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("ticket %d already %s: %w", id, ticket.Verification, lifecycle.ErrInvalidTransition)
	}
	return c.Store.GetTicket(ctx, id)
}

// AdvertiseTicket toggles the advertised flag. Only approved tickets qualify
// and at most types.MaxAdvertised are advertised at once.
func (c *Controller) AdvertiseTicket(ctx context.Context, id uint, advertised bool) (*models.Ticket, error) {
	var result *models.Ticket
	err := c.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.LockAdvertising(ctx); err != nil {
			return err
		}
		ticket, err := tx.GetTicket(ctx, id)
		if err != nil {
			return err
		}
		if ticket.Advertised == advertised {
			result = ticket
			return nil
		}
		if advertised {
			if ticket.Verification != types.VERIFICATION_APPROVED {
				return fmt.Errorf("ticket %d is %s, only approved tickets can be advertised: %w", id, ticket.Verification, lifecycle.ErrTicketUnavailable)
			}
			count, err := tx.CountAdvertised(ctx)
			if err != nil {
				return err
			}
			if count >= types.MaxAdvertised {
				return fmt.Errorf("%d tickets already advertised: %w", count, lifecycle.ErrAdvertiseLimit)
			}
		}
		if err := tx.SetTicketAdvertised(ctx, id, advertised); err != nil {
			return err
		}
		ticket.Advertised = advertised
		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	if count, err := c.Store.CountAdvertised(ctx); err == nil {
		lib.AdvertisedTickets.Set(float64(count))
	}
	return result, nil
}

// ReleaseDepartedAdvertisements frees advertise slots held by tickets that
// have already departed.
func (c *Controller) ReleaseDepartedAdvertisements(ctx context.Context) (int, error) {
	tickets, err := c.AdvertisedTickets(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	now := c.Now()
	for _, t := range tickets {
		if !t.Departed(now) {
			continue
		}
		if _, err := c.AdvertiseTicket(ctx, t.ID, false); err != nil {
			log.Printf("Error releasing advertisement for ticket %d: %s\n", t.ID, err.Error())
			continue
		}
		released++
	}
	return released, nil
}
