package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// Backend is the server of record. Implementations translate transport and
// HTTP failures into the errors declared in this package.
type Backend interface {
	CreateBooking(ctx context.Context, ticketID uint, quantity uint) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus) (*models.Booking, error)
	CreatePaymentIntent(ctx context.Context, bookingID uint, amount decimal.Decimal) (string, error)
	RecordPayment(ctx context.Context, payment PaymentRecord) (*models.Transaction, error)
}

type PaymentRecord struct {
	BookingID     uint            `json:"bookingId"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	TicketTitle   string          `json:"ticketTitle"`
}

// TransitionError reports a rejected transition together with the status the
// server holds after reconciliation.
type TransitionError struct {
	BookingID uint
	Current   types.BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %d: %s (current status: %s)", e.BookingID, ErrInvalidTransition.Error(), e.Current)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// UnconfirmedPaymentError is returned when the provider charged the card but
// recording the payment failed. Retrying ConfirmPayment with Confirmation is
// safe.
type UnconfirmedPaymentError struct {
	BookingID    uint
	Confirmation Confirmation
	Err          error
}

func (e *UnconfirmedPaymentError) Error() string {
	return fmt.Sprintf("booking %d: payment %s not recorded: %s", e.BookingID, e.Confirmation.TransactionID, e.Err.Error())
}

func (e *UnconfirmedPaymentError) Unwrap() error {
	return e.Err
}

// Controller drives a booking through request, vendor response and payment.
// Local state is provisional and only ever replaced by server responses.
type Controller struct {
	backend  Backend
	provider PaymentProvider
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	bookings map[uint]models.Booking
}

func NewController(backend Backend, provider PaymentProvider) *Controller {
	return &Controller{
		backend:  backend,
		provider: provider,
		now:      time.Now,
		inflight: map[string]struct{}{},
		bookings: map[uint]models.Booking{},
	}
}

func (c *Controller) begin(key string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return nil, fmt.Errorf("%s: %w", key, ErrBusy)
	}
	c.inflight[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}, nil
}

func bookingKey(id uint) string {
	return fmt.Sprintf("booking:%d", id)
}

func (c *Controller) remember(b *models.Booking) {
	if b == nil {
		return
	}
	c.mu.Lock()
	c.bookings[b.ID] = *b
	c.mu.Unlock()
}

// Booking returns the last server-confirmed copy of a booking.
func (c *Controller) Booking(id uint) (models.Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bookings[id]
	return b, ok
}

// State returns the cached status with the expired overlay applied.
func (c *Controller) State(id uint) (types.BookingStatus, bool) {
	b, ok := c.Booking(id)
	if !ok {
		return "", false
	}
	return b.EffectiveStatus(c.now()), true
}

// Refresh replaces the cached booking with the server's copy.
func (c *Controller) Refresh(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := c.backend.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	c.remember(b)
	return b, nil
}

func (c *Controller) RequestBooking(ctx context.Context, ticketID uint, quantity uint) (*models.Booking, error) {
	if quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidRequest)
	}
	done, err := c.begin(fmt.Sprintf("ticket:%d", ticketID))
	if err != nil {
		return nil, err
	}
	defer done()

	b, err := c.backend.CreateBooking(ctx, ticketID, quantity)
	if err != nil {
		return nil, err
	}
	c.remember(b)
	return b, nil
}

func (c *Controller) RespondToBooking(ctx context.Context, bookingID uint, decision types.Decision) (*models.Booking, error) {
	target, err := decision.Target()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	done, err := c.begin(bookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer done()

	b, err := c.backend.UpdateBookingStatus(ctx, bookingID, target)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, c.reconcile(ctx, bookingID, err)
		}
		return nil, err
	}
	c.remember(b)
	return b, nil
}

// reconcile refetches the booking after a rejected transition so the caller
// learns how the booking was actually resolved.
func (c *Controller) reconcile(ctx context.Context, bookingID uint, cause error) error {
	current, err := c.Refresh(ctx, bookingID)
	if err != nil {
		log.Printf("[Lifecycle] error refreshing booking %d: %s\n", bookingID, err.Error())
		return cause
	}
	return &TransitionError{BookingID: bookingID, Current: current.EffectiveStatus(c.now())}
}

func (c *Controller) InitiatePayment(ctx context.Context, bookingID uint) (string, error) {
	done, err := c.begin(bookingKey(bookingID))
	if err != nil {
		return "", err
	}
	defer done()
	return c.initiatePayment(ctx, bookingID)
}

func (c *Controller) initiatePayment(ctx context.Context, bookingID uint) (string, error) {
	b, err := c.Refresh(ctx, bookingID)
	if err != nil {
		return "", err
	}
	switch b.EffectiveStatus(c.now()) {
	case types.BOOKING_ACCEPTED:
	case types.BOOKING_EXPIRED:
		return "", fmt.Errorf("booking %d: %w", bookingID, ErrBookingExpired)
	default:
		return "", &TransitionError{BookingID: bookingID, Current: b.Status}
	}
	// the server recomputes expiry and answers ErrBookingExpired even when
	// the local clock is behind
	secret, err := c.backend.CreatePaymentIntent(ctx, bookingID, b.TotalPrice)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return "", c.reconcile(ctx, bookingID, err)
		}
		return "", err
	}
	return secret, nil
}

// ConfirmPayment records a provider-confirmed payment. Replaying the same
// confirmation for a paid booking returns the existing transaction.
func (c *Controller) ConfirmPayment(ctx context.Context, bookingID uint, conf Confirmation) (*models.Transaction, error) {
	done, err := c.begin(bookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer done()
	return c.confirmPayment(ctx, bookingID, conf)
}

func (c *Controller) confirmPayment(ctx context.Context, bookingID uint, conf Confirmation) (*models.Transaction, error) {
	if conf.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing provider transaction id", ErrInvalidRequest)
	}
	b, ok := c.Booking(bookingID)
	if !ok {
		fresh, err := c.Refresh(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		b = *fresh
	}
	txn, err := c.backend.RecordPayment(ctx, PaymentRecord{
		BookingID:     bookingID,
		TransactionID: conf.TransactionID,
		Amount:        b.TotalPrice,
		TicketTitle:   b.TicketTitle,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, c.reconcile(ctx, bookingID, err)
		}
		return nil, err
	}
	if _, err := c.Refresh(ctx, bookingID); err != nil {
		log.Printf("[Lifecycle] error refreshing paid booking %d: %s\n", bookingID, err.Error())
		b.Status = types.BOOKING_PAID
		c.remember(&b)
	}
	return txn, nil
}

// Pay runs the whole handshake: payment intent, provider confirmation and
// server-side recording. A decline leaves the booking accepted.
func (c *Controller) Pay(ctx context.Context, bookingID uint, paymentMethod string) (*models.Transaction, error) {
	done, err := c.begin(bookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer done()

	secret, err := c.initiatePayment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	conf, err := c.provider.ConfirmCardPayment(ctx, secret, paymentMethod)
	if err != nil {
		if errors.Is(err, ErrNetworkFailure) || errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, err.Error())
	}
	txn, err := c.confirmPayment(ctx, bookingID, conf)
	if err != nil {
		return nil, &UnconfirmedPaymentError{BookingID: bookingID, Confirmation: conf, Err: err}
	}
	return txn, nil
}
