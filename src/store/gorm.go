package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/models/scopes"
	"ticketbari/src/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// advertiseLockKey identifies the advisory lock that serializes advertise
// toggles so the cap check and the update see the same count.
const advertiseLockKey = 770_001

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, lifecycle.ErrNotFound)
	}
	return err
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) UpsertUser(ctx context.Context, u *models.User) error {
	var user models.User
	err := s.conn(ctx).
		Where(&models.User{UID: u.UID}).
		Attrs(models.User{Email: u.Email, Name: u.Name, Role: u.Role, EmailVerified: u.EmailVerified}).
		FirstOrCreate(&user).
		Error
	if err != nil {
		log.Printf("Error upserting user %s: %s\n", u.UID, err.Error())
		return err
	}
	*u = user
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (s *GormStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	return s.conn(ctx).Create(t).Error
}

func (s *GormStore) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.conn(ctx).First(&ticket, id).Error; err != nil {
		return nil, notFound(err, "ticket", id)
	}
	return &ticket, nil
}

func (s *GormStore) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, int64, error) {
	q := s.conn(ctx).Model(&models.Ticket{})
	if f.Verification != "" {
		q = q.Scopes(scopes.WithVerification(f.Verification))
	}
	if f.VendorID != 0 {
		q = q.Scopes(scopes.WithVendor(f.VendorID))
	}
	if f.Advertised != nil {
		q = q.Where("advertised = ?", *f.Advertised)
	}
	if f.From != "" {
		q = q.Where("LOWER(origin) LIKE ?", "%"+strings.ToLower(f.From)+"%")
	}
	if f.To != "" {
		q = q.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(f.To)+"%")
	}
	if f.Transport != "" {
		q = q.Where("transport = ?", f.Transport)
	}
	if !f.DepartingAfter.IsZero() {
		q = q.Where("departure_at > ?", f.DepartingAfter)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "price_asc":
		q = q.Order("price asc")
	case "price_desc":
		q = q.Order("price desc")
	default:
		q = q.Order("created_at desc")
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var tickets []models.Ticket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, count, nil
}

func (s *GormStore) SetTicketVerification(ctx context.Context, id uint, to types.VerificationStatus) (bool, error) {
	res := s.conn(ctx).
		Model(&models.Ticket{}).
		Scopes(scopes.WithID(id), scopes.WithVerification(types.VERIFICATION_PENDING)).
		Update("verification", to)
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) SetTicketAdvertised(ctx context.Context, id uint, advertised bool) error {
	return s.conn(ctx).
		Model(&models.Ticket{}).
		Scopes(scopes.WithID(id)).
		Update("advertised", advertised).
		Error
}

func (s *GormStore) CountAdvertised(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Ticket{}).Where("advertised = ?", true).Count(&n).Error
	return n, err
}

func (s *GormStore) LockAdvertising(ctx context.Context) error {
	return s.conn(ctx).Exec("SELECT pg_advisory_xact_lock(?)", advertiseLockKey).Error
}

func (s *GormStore) DecrementInventory(ctx context.Context, ticketID uint, qty uint) (bool, error) {
	res := s.conn(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND quantity_remaining >= ?", ticketID, qty).
		Update("quantity_remaining", gorm.Expr("quantity_remaining - ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) TicketStats(ctx context.Context, vendorID uint) (map[types.VerificationStatus]int64, error) {
	var rows []struct {
		Verification types.VerificationStatus
		Count        int64
	}
	q := s.conn(ctx).Model(&models.Ticket{}).Select("verification, count(*) AS count")
	if vendorID != 0 {
		q = q.Scopes(scopes.WithVendor(vendorID))
	}
	if err := q.Group("verification").Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := map[types.VerificationStatus]int64{}
	for _, row := range rows {
		stats[row.Verification] = row.Count
	}
	return stats, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.conn(ctx).Create(b).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uint, forUpdate bool) (*models.Booking, error) {
	q := s.conn(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var booking models.Booking
	if err := q.First(&booking, id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &booking, nil
}

func (s *GormStore) TransitionBooking(ctx context.Context, id uint, from, to types.BookingStatus) (bool, error) {
	res := s.conn(ctx).
		Model(&models.Booking{}).
		Scopes(scopes.WithID(id), scopes.WithStatus(from)).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) bookingScope(q *gorm.DB, f BookingFilter) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.VendorID != 0 {
		q = q.Scopes(scopes.WithVendor(f.VendorID))
	}
	if f.Status != "" {
		q = q.Scopes(scopes.WithStatus(f.Status))
	}
	return q
}

func (s *GormStore) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.bookingScope(s.conn(ctx).Model(&models.Booking{}), f).
		Preload("Transaction").
		Order("created_at desc").
		Find(&bookings).
		Error
	return bookings, err
}

func (s *GormStore) BookingStats(ctx context.Context, f BookingFilter) (map[types.BookingStatus]int64, error) {
	var rows []struct {
		Status types.BookingStatus
		Count  int64
	}
	q := s.bookingScope(s.conn(ctx).Model(&models.Booking{}), f).Select("status, count(*) AS count")
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := map[types.BookingStatus]int64{}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	err := s.conn(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("transaction for booking %d: %w", t.BookingID, ErrDuplicate)
	}
	return err
}

func (s *GormStore) GetTransactionByBooking(ctx context.Context, bookingID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.conn(ctx).Where("booking_id = ?", bookingID).First(&txn).Error; err != nil {
		return nil, notFound(err, "transaction for booking", bookingID)
	}
	return &txn, nil
}

func (s *GormStore) transactionScope(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("transactions.user_id = ?", f.UserID)
	}
	if f.VendorID != 0 {
		q = q.Joins("JOIN bookings ON bookings.id = transactions.booking_id").
			Where("bookings.vendor_id = ?", f.VendorID)
	}
	return q
}

func (s *GormStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.transactionScope(s.conn(ctx).Model(&models.Transaction{}), f).
		Order("transactions.paid_at desc").
		Find(&txns).
		Error
	return txns, err
}

func (s *GormStore) Revenue(ctx context.Context, f TransactionFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.transactionScope(s.conn(ctx).Model(&models.Transaction{}), f).
		Select("COALESCE(SUM(transactions.amount), 0)").
		Row().
		Scan(&total)
	return total, err
}
