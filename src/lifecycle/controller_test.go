package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeBackend struct {
	mu        sync.Mutex
	bookings  map[uint]*models.Booking
	txns      map[uint]*models.Transaction
	calls     map[string]int
	block     chan struct{}
	recordErr error
	intentErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		bookings: map[uint]*models.Booking{},
		txns:     map[uint]*models.Transaction{},
		calls:    map[string]int{},
	}
}

func (f *fakeBackend) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
}

func (f *fakeBackend) CreateBooking(ctx context.Context, ticketID uint, quantity uint) (*models.Booking, error) {
	f.hit("CreateBooking")
	f.mu.Lock()
	defer f.mu.Unlock()
	if quantity > 5 {
		return nil, fmt.Errorf("ticket %d: %w", ticketID, ErrInsufficientInventory)
	}
	b := &models.Booking{
		ID:          uint(len(f.bookings) + 1),
		TicketID:    ticketID,
		Quantity:    quantity,
		UnitPrice:   decimal.NewFromInt(100),
		TotalPrice:  decimal.NewFromInt(int64(100 * quantity)),
		Status:      types.BOOKING_PENDING,
		DepartureAt: time.Now().Add(24 * time.Hour),
		TicketTitle: "Dhaka to Sylhet",
	}
	f.bookings[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeBackend) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	f.calls["GetBooking"]++
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBackend) UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus) (*models.Booking, error) {
	f.hit("UpdateBookingStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !b.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrInvalidTransition)
	}
	b.Status = status
	cp := *b
	return &cp, nil
}

func (f *fakeBackend) CreatePaymentIntent(ctx context.Context, bookingID uint, amount decimal.Decimal) (string, error) {
	f.hit("CreatePaymentIntent")
	if f.intentErr != nil {
		return "", f.intentErr
	}
	return fmt.Sprintf("pi_%d_secret_test", bookingID), nil
}

func (f *fakeBackend) RecordPayment(ctx context.Context, p PaymentRecord) (*models.Transaction, error) {
	f.hit("RecordPayment")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	b := f.bookings[p.BookingID]
	if b.Status == types.BOOKING_PAID {
		if txn := f.txns[b.ID]; txn.ProviderTransactionID == p.TransactionID {
			return txn, nil
		}
		return nil, ErrInvalidTransition
	}
	if b.Status != types.BOOKING_ACCEPTED {
		return nil, ErrInvalidTransition
	}
	b.Status = types.BOOKING_PAID
	txn := &models.Transaction{ID: uuid.New(), BookingID: b.ID, ProviderTransactionID: p.TransactionID, Amount: p.Amount}
	f.txns[b.ID] = txn
	return txn, nil
}

type fakeProvider struct {
	err   error
	calls int
}

func (p *fakeProvider) ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethod string) (Confirmation, error) {
	p.calls++
	if p.err != nil {
		return Confirmation{}, p.err
	}
	return Confirmation{TransactionID: IntentIDFromSecret(clientSecret)}, nil
}

type LifecycleSuite struct {
	suite.Suite
	backend  *fakeBackend
	provider *fakeProvider
	ctrl     *Controller
	ctx      context.Context
}

func (s *LifecycleSuite) SetupTest() {
	s.backend = newFakeBackend()
	s.provider = &fakeProvider{}
	s.ctrl = NewController(s.backend, s.provider)
	s.ctx = context.Background()
}

func (s *LifecycleSuite) accepted() *models.Booking {
	b, err := s.ctrl.RequestBooking(s.ctx, 1, 2)
	s.Require().NoError(err)
	b, err = s.ctrl.RespondToBooking(s.ctx, b.ID, types.DECISION_ACCEPT)
	s.Require().NoError(err)
	return b
}

func (s *LifecycleSuite) TestRequestBooking() {
	b, err := s.ctrl.RequestBooking(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.Equal(types.BOOKING_PENDING, b.Status)

	state, ok := s.ctrl.State(b.ID)
	s.True(ok)
	s.Equal(types.BOOKING_PENDING, state)

	_, err = s.ctrl.RequestBooking(s.ctx, 1, 0)
	s.ErrorIs(err, ErrInvalidRequest)
	_, err = s.ctrl.RequestBooking(s.ctx, 1, 6)
	s.ErrorIs(err, ErrInsufficientInventory)
	s.Equal(2, s.backend.called("CreateBooking"))
}

func (s *LifecycleSuite) TestRejectedDecisionReconciles() {
	b, err := s.ctrl.RequestBooking(s.ctx, 1, 1)
	s.Require().NoError(err)
	_, err = s.ctrl.RespondToBooking(s.ctx, b.ID, types.DECISION_REJECT)
	s.Require().NoError(err)

	_, err = s.ctrl.RespondToBooking(s.ctx, b.ID, types.DECISION_ACCEPT)
	var te *TransitionError
	s.Require().ErrorAs(err, &te)
	s.ErrorIs(err, ErrInvalidTransition)
	s.Equal(types.BOOKING_REJECTED, te.Current)

	_, err = s.ctrl.RespondToBooking(s.ctx, b.ID, types.Decision("maybe"))
	s.ErrorIs(err, ErrInvalidRequest)
}

func (s *LifecycleSuite) TestConcurrentCallsAreBusy() {
	b, err := s.ctrl.RequestBooking(s.ctx, 1, 1)
	s.Require().NoError(err)

	s.backend.mu.Lock()
	s.backend.block = make(chan struct{})
	s.backend.mu.Unlock()

	first := make(chan error, 1)
	go func() {
		_, err := s.ctrl.RespondToBooking(s.ctx, b.ID, types.DECISION_ACCEPT)
		first <- err
	}()
	s.Eventually(func() bool { return s.backend.called("UpdateBookingStatus") == 1 }, time.Second, time.Millisecond)

	_, err = s.ctrl.RespondToBooking(s.ctx, b.ID, types.DECISION_REJECT)
	s.ErrorIs(err, ErrBusy)

	s.backend.mu.Lock()
	close(s.backend.block)
	s.backend.block = nil
	s.backend.mu.Unlock()
	s.NoError(<-first)

	state, _ := s.ctrl.State(b.ID)
	s.Equal(types.BOOKING_ACCEPTED, state)
}

func (s *LifecycleSuite) TestInitiatePaymentExpiredLocally() {
	b := s.accepted()
	s.backend.mu.Lock()
	s.backend.bookings[b.ID].DepartureAt = time.Now().Add(-time.Minute)
	s.backend.mu.Unlock()

	_, err := s.ctrl.InitiatePayment(s.ctx, b.ID)
	s.ErrorIs(err, ErrBookingExpired)
	s.Zero(s.backend.called("CreatePaymentIntent"))

	state, _ := s.ctrl.State(b.ID)
	s.Equal(types.BOOKING_EXPIRED, state)
}

func (s *LifecycleSuite) TestInitiatePaymentRequiresAccepted() {
	b, err := s.ctrl.RequestBooking(s.ctx, 1, 1)
	s.Require().NoError(err)

	_, err = s.ctrl.InitiatePayment(s.ctx, b.ID)
	var te *TransitionError
	s.Require().ErrorAs(err, &te)
	s.Equal(types.BOOKING_PENDING, te.Current)
}

func (s *LifecycleSuite) TestPay() {
	b := s.accepted()
	txn, err := s.ctrl.Pay(s.ctx, b.ID, "pm_card_visa")
	s.Require().NoError(err)
	s.Equal(fmt.Sprintf("pi_%d", b.ID), txn.ProviderTransactionID)
	s.True(txn.Amount.Equal(decimal.NewFromInt(200)))

	state, _ := s.ctrl.State(b.ID)
	s.Equal(types.BOOKING_PAID, state)

	replay, err := s.ctrl.ConfirmPayment(s.ctx, b.ID, Confirmation{TransactionID: txn.ProviderTransactionID})
	s.Require().NoError(err)
	s.Equal(txn.ID, replay.ID)

	_, err = s.ctrl.ConfirmPayment(s.ctx, b.ID, Confirmation{TransactionID: "pi_other"})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *LifecycleSuite) TestPayDeclinedLeavesAccepted() {
	b := s.accepted()
	s.provider.err = fmt.Errorf("%w: insufficient funds", ErrPaymentDeclined)

	_, err := s.ctrl.Pay(s.ctx, b.ID, "pm_card_chargeDeclined")
	s.ErrorIs(err, ErrPaymentDeclined)
	s.Zero(s.backend.called("RecordPayment"))

	state, _ := s.ctrl.State(b.ID)
	s.Equal(types.BOOKING_ACCEPTED, state)
}

func (s *LifecycleSuite) TestPayUnknownProviderErrorIsDecline() {
	b := s.accepted()
	s.provider.err = fmt.Errorf("3ds required")
	_, err := s.ctrl.Pay(s.ctx, b.ID, "pm")
	s.ErrorIs(err, ErrPaymentDeclined)
}

func (s *LifecycleSuite) TestPayUnrecordedCanBeRetried() {
	b := s.accepted()
	s.backend.recordErr = fmt.Errorf("dial: %w", ErrNetworkFailure)

	_, err := s.ctrl.Pay(s.ctx, b.ID, "pm_card_visa")
	var unconfirmed *UnconfirmedPaymentError
	s.Require().ErrorAs(err, &unconfirmed)
	s.ErrorIs(err, ErrNetworkFailure)
	s.True(Retryable(err))

	s.backend.recordErr = nil
	txn, err := s.ctrl.ConfirmPayment(s.ctx, b.ID, unconfirmed.Confirmation)
	s.Require().NoError(err)
	s.Equal(unconfirmed.Confirmation.TransactionID, txn.ProviderTransactionID)
	s.Equal(1, s.provider.calls)
}

func (s *LifecycleSuite) TestConfirmPaymentNeedsTransactionID() {
	b := s.accepted()
	_, err := s.ctrl.ConfirmPayment(s.ctx, b.ID, Confirmation{})
	s.ErrorIs(err, ErrInvalidRequest)
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func TestTransitionErrorMessage(t *testing.T) {
	err := &TransitionError{BookingID: 3, Current: types.BOOKING_PAID}
	assert.Contains(t, err.Error(), "current status: paid")
	require.ErrorIs(t, err, ErrInvalidTransition)
}
