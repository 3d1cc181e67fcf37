package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/store"
	"ticketbari/src/types"
	"ticketbari/src/utils"

	"github.com/google/uuid"
)

const (
	confirmSourceClient  = "client"
	confirmSourceWebhook = "webhook"
)

// InitiatePayment issues a payment intent for an accepted booking owned by
// actor. The charged amount is always the booking total on record.
func (c *Controller) InitiatePayment(ctx context.Context, actor Actor, body *types.CreatePaymentIntentRequestBody) (*types.PaymentIntent, error) {
	booking, err := c.Store.GetBooking(ctx, body.BookingID, false)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.ID {
		return nil, fmt.Errorf("booking %d belongs to another customer: %w", booking.ID, lifecycle.ErrForbidden)
	}
	switch booking.EffectiveStatus(c.Now()) {
	case types.BOOKING_ACCEPTED:
	case types.BOOKING_EXPIRED:
		return nil, fmt.Errorf("booking %d departed at %s: %w", booking.ID, booking.DepartureAt, lifecycle.ErrBookingExpired)
	default:
		return nil, fmt.Errorf("booking %d is %s: %w", booking.ID, booking.Status, lifecycle.ErrInvalidTransition)
	}
	if body.Amount != nil && !body.Amount.Equal(booking.TotalPrice) {
		return nil, fmt.Errorf("amount %s does not match total %s: %w", body.Amount, booking.TotalPrice, lifecycle.ErrAmountMismatch)
	}

	minor := utils.ToMinorUnits(booking.TotalPrice)
	if c.Intents != nil {
		cached, err := c.Intents.Get(ctx, booking.ID)
		if err != nil {
			log.Printf("[Redis] Error reading cached intent for booking %d: %s\n", booking.ID, err.Error())
		} else if cached != nil && cached.AmountMinor == minor {
			return cached, nil
		}
	}

	pi, err := c.Payments.CreatePaymentIntent(ctx, booking.ID, booking.TotalPrice, c.Currency)
	if err != nil {
		return nil, err
	}
	if c.Intents != nil {
		if err := c.Intents.Set(ctx, booking.ID, pi); err != nil {
			log.Printf("[Redis] Error caching intent for booking %d: %s\n", booking.ID, err.Error())
		}
	}
	return pi, nil
}

// ConfirmPayment records a successful payment reported by the client. It is
// idempotent: replaying the same provider transaction id returns the
// existing transaction with created == false.
func (c *Controller) ConfirmPayment(ctx context.Context, actor Actor, body *types.CreatePaymentRequestBody) (*models.Transaction, bool, error) {
	booking, err := c.Store.GetBooking(ctx, body.BookingID, false)
	if err != nil {
		return nil, false, err
	}
	if booking.UserID != actor.ID {
		return nil, false, fmt.Errorf("booking %d belongs to another customer: %w", booking.ID, lifecycle.ErrForbidden)
	}
	if body.Amount != nil && !body.Amount.Equal(booking.TotalPrice) {
		return nil, false, fmt.Errorf("amount %s does not match total %s: %w", body.Amount, booking.TotalPrice, lifecycle.ErrAmountMismatch)
	}
	if booking.Status == types.BOOKING_PAID {
		txn, err := c.replay(ctx, booking.ID, body.TransactionID)
		if err != nil {
			return nil, false, err
		}
		lib.PaymentConfirmations.WithLabelValues("replayed", confirmSourceClient).Inc()
		return txn, false, nil
	}

	pi, err := c.Payments.RetrievePaymentIntent(ctx, body.TransactionID)
	if err != nil {
		return nil, false, err
	}
	if err := verifyIntent(pi, booking); err != nil {
		return nil, false, err
	}
	return c.recordPayment(ctx, booking.ID, pi, confirmSourceClient)
}

// ConfirmFromWebhook records a payment_intent.succeeded event. Events for
// bookings that are already paid with the same intent are no-ops.
func (c *Controller) ConfirmFromWebhook(ctx context.Context, pi *types.PaymentIntent) (*models.Transaction, bool, error) {
	if pi.BookingID == 0 {
		return nil, false, fmt.Errorf("payment intent %s has no booking: %w", pi.ID, lifecycle.ErrInvalidRequest)
	}
	booking, err := c.Store.GetBooking(ctx, pi.BookingID, false)
	if err != nil {
		return nil, false, err
	}
	if err := verifyIntent(pi, booking); err != nil {
		return nil, false, err
	}
	return c.recordPayment(ctx, booking.ID, pi, confirmSourceWebhook)
}

func verifyIntent(pi *types.PaymentIntent, booking *models.Booking) error {
	if !pi.Succeeded {
		return fmt.Errorf("payment intent %s has not succeeded: %w", pi.ID, lifecycle.ErrPaymentDeclined)
	}
	if pi.BookingID != booking.ID {
		return fmt.Errorf("payment intent %s is for booking %d: %w", pi.ID, pi.BookingID, lifecycle.ErrInvalidRequest)
	}
	if pi.AmountMinor != utils.ToMinorUnits(booking.TotalPrice) {
		return fmt.Errorf("payment intent %s charged %d: %w", pi.ID, pi.AmountMinor, lifecycle.ErrAmountMismatch)
	}
	return nil
}

func (c *Controller) replay(ctx context.Context, bookingID uint, providerID string) (*models.Transaction, error) {
	txn, err := c.Store.GetTransactionByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if txn.ProviderTransactionID != providerID {
		return nil, fmt.Errorf("booking %d is already paid: %w", bookingID, lifecycle.ErrInvalidTransition)
	}
	return txn, nil
}

func (c *Controller) recordPayment(ctx context.Context, bookingID uint, pi *types.PaymentIntent, source string) (*models.Transaction, bool, error) {
	var (
		txn     *models.Transaction
		created bool
		paid    *models.Booking
	)
	err := c.Store.WithTx(ctx, func(tx store.Store) error {
		booking, err := tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if booking.Status == types.BOOKING_PAID {
			existing, err := tx.GetTransactionByBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			if existing.ProviderTransactionID != pi.ID {
				return fmt.Errorf("booking %d is already paid: %w", bookingID, lifecycle.ErrInvalidTransition)
			}
			txn = existing
			return nil
		}
		if !booking.Status.CanTransitionTo(types.BOOKING_PAID) {
			return fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, lifecycle.ErrInvalidTransition)
		}
		ok, err := tx.DecrementInventory(ctx, booking.TicketID, booking.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ticket %d cannot cover %d seats: %w", booking.TicketID, booking.Quantity, lifecycle.ErrInsufficientInventory)
		}
		record := &models.Transaction{
			ID:                    uuid.New(),
			BookingID:             booking.ID,
			UserID:                booking.UserID,
			ProviderTransactionID: pi.ID,
			Amount:                booking.TotalPrice,
			Currency:              pi.Currency,
			TicketTitle:           booking.TicketTitle,
			PaidAt:                c.Now(),
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("transaction %s already recorded: %w", pi.ID, lifecycle.ErrInvalidTransition)
			}
			return err
		}
		applied, err := tx.TransitionBooking(ctx, booking.ID, types.BOOKING_ACCEPTED, types.BOOKING_PAID)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("booking %d changed while paying: %w", booking.ID, lifecycle.ErrInvalidTransition)
		}
		booking.Status = types.BOOKING_PAID
		txn, created, paid = record, true, booking
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		lib.PaymentConfirmations.WithLabelValues("replayed", source).Inc()
		return txn, false, nil
	}
	lib.PaymentConfirmations.WithLabelValues("recorded", source).Inc()
	lib.BookingTransitions.WithLabelValues(string(types.BOOKING_ACCEPTED), string(types.BOOKING_PAID)).Inc()
	if c.Intents != nil {
		if err := c.Intents.Delete(ctx, bookingID); err != nil {
			log.Printf("[Redis] Error clearing intent for booking %d: %s\n", bookingID, err.Error())
		}
	}
	c.publish(ctx, types.EVENT_BOOKING_PAID, paid, paid.UserID)
	return txn, true, nil
}

func (c *Controller) UserTransactions(ctx context.Context, actor Actor) ([]models.Transaction, error) {
	filter := store.TransactionFilter{UserID: actor.ID}
	if actor.Role == types.ROLE_VENDOR {
		filter = store.TransactionFilter{VendorID: actor.ID}
	}
	return c.Store.ListTransactions(ctx, filter)
}

// TicketCode returns the opaque reference encoded on the e-ticket of a paid booking.
func (c *Controller) TicketCode(ctx context.Context, actor Actor, bookingID uint) (string, *models.Booking, error) {
	booking, err := c.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return "", nil, err
	}
	if booking.Status != types.BOOKING_PAID {
		return "", nil, fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, lifecycle.ErrInvalidTransition)
	}
	code, err := utils.EncodeTicketCode(booking.ID, booking.UserID)
	if err != nil {
		return "", nil, err
	}
	return code, booking, nil
}
