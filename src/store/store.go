// Package store persists tickets, bookings and transactions. Conditional
// updates report whether they applied so callers can tell a lost race from a
// missing row.
package store

import (
	"context"
	"errors"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

var ErrDuplicate = errors.New("duplicate record")

type TicketFilter struct {
	Verification   types.VerificationStatus
	VendorID       uint
	Advertised     *bool
	From           string
	To             string
	Transport      types.TransportMode
	DepartingAfter time.Time
	Sort           string
	Offset         int
	Limit          int
}

type BookingFilter struct {
	UserID   uint
	VendorID uint
	Status   types.BookingStatus
}

type TransactionFilter struct {
	UserID   uint
	VendorID uint
}

type Store interface {
	// WithTx runs fn inside one database transaction. Rows read with
	// GetBooking(..., true) stay locked until fn returns.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	UpsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)

	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, id uint) (*models.Ticket, error)
	ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, int64, error)
	SetTicketVerification(ctx context.Context, id uint, to types.VerificationStatus) (bool, error)
	SetTicketAdvertised(ctx context.Context, id uint, advertised bool) error
	CountAdvertised(ctx context.Context) (int64, error)
	LockAdvertising(ctx context.Context) error
	DecrementInventory(ctx context.Context, ticketID uint, qty uint) (bool, error)
	TicketStats(ctx context.Context, vendorID uint) (map[types.VerificationStatus]int64, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint, forUpdate bool) (*models.Booking, error)
	TransitionBooking(ctx context.Context, id uint, from, to types.BookingStatus) (bool, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	BookingStats(ctx context.Context, f BookingFilter) (map[types.BookingStatus]int64, error)

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionByBooking(ctx context.Context, bookingID uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error)
	Revenue(ctx context.Context, f TransactionFilter) (decimal.Decimal, error)
}
