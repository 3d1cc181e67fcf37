package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps everything in process. It backs STORE_DRIVER=memory and
// the tests. Transactions are serialized with each other and roll back through
// an undo log, so writes made outside the transaction survive a rollback.
type MemoryStore struct {
	txMu *sync.Mutex
	mu   *sync.Mutex
	data *memoryData
	// undo is set on the store handed to a WithTx callback
	undo *undoLog
}

type memoryData struct {
	users        map[uint]models.User
	tickets      map[uint]models.Ticket
	bookings     map[uint]models.Booking
	transactions map[uint]models.Transaction
	providerIDs  map[string]uint
	nextID       uint
}

type undoLog struct {
	steps []func(d *memoryData)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txMu: &sync.Mutex{},
		mu:   &sync.Mutex{},
		data: &memoryData{
			users:        map[uint]models.User{},
			tickets:      map[uint]models.Ticket{},
			bookings:     map[uint]models.Booking{},
			transactions: map[uint]models.Transaction{},
			providerIDs:  map[string]uint{},
		},
	}
}

func (d *memoryData) id() uint {
	d.nextID++
	return d.nextID
}

// record registers the inverse of a write. Callers hold mu. Steps only touch
// the fields the write changed; ids are never reused.
func (s *MemoryStore) record(step func(d *memoryData)) {
	if s.undo != nil {
		s.undo.steps = append(s.undo.steps, step)
	}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.undo != nil {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &MemoryStore{txMu: s.txMu, mu: s.mu, data: s.data, undo: &undoLog{}}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		for i := len(tx.undo.steps) - 1; i >= 0; i-- {
			tx.undo.steps[i](s.data)
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) UpsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.users {
		if existing.UID == u.UID {
			*u = existing
			return nil
		}
	}
	if u.Role == "" {
		u.Role = types.ROLE_CUSTOMER
	}
	u.ID = s.data.id()
	u.CreatedAt = time.Now()
	s.data.users[u.ID] = *u
	id := u.ID
	s.record(func(d *memoryData) { delete(d.users, id) })
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, lifecycle.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.data.id()
	if t.Verification == "" {
		t.Verification = types.VERIFICATION_PENDING
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.data.tickets[t.ID] = *t
	id := t.ID
	s.record(func(d *memoryData) { delete(d.tickets, id) })
	return nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %d: %w", id, lifecycle.ErrNotFound)
	}
	return &t, nil
}

func (s *MemoryStore) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.data.tickets {
		if f.Verification != "" && t.Verification != f.Verification {
			continue
		}
		if f.VendorID != 0 && t.VendorID != f.VendorID {
			continue
		}
		if f.Advertised != nil && t.Advertised != *f.Advertised {
			continue
		}
		if f.From != "" && !strings.Contains(strings.ToLower(t.From), strings.ToLower(f.From)) {
			continue
		}
		if f.To != "" && !strings.Contains(strings.ToLower(t.To), strings.ToLower(f.To)) {
			continue
		}
		if f.Transport != "" && t.Transport != f.Transport {
			continue
		}
		if !f.DepartingAfter.IsZero() && !t.DepartureAt.After(f.DepartingAfter) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		switch f.Sort {
		case "price_asc":
			return out[i].Price.LessThan(out[j].Price)
		case "price_desc":
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].ID > out[j].ID
	})
	count := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, count, nil
}

func (s *MemoryStore) SetTicketVerification(ctx context.Context, id uint, to types.VerificationStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.tickets[id]
	if !ok || t.Verification != types.VERIFICATION_PENDING {
		return false, nil
	}
	t.Verification = to
	t.UpdatedAt = time.Now()
	s.data.tickets[id] = t
	s.record(func(d *memoryData) {
		if t, ok := d.tickets[id]; ok && t.Verification == to {
			t.Verification = types.VERIFICATION_PENDING
			d.tickets[id] = t
		}
	})
	return true, nil
}

func (s *MemoryStore) SetTicketAdvertised(ctx context.Context, id uint, advertised bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.tickets[id]
	if !ok {
		return fmt.Errorf("ticket %d: %w", id, lifecycle.ErrNotFound)
	}
	prev := t.Advertised
	t.Advertised = advertised
	s.data.tickets[id] = t
	s.record(func(d *memoryData) {
		if t, ok := d.tickets[id]; ok && t.Advertised == advertised {
			t.Advertised = prev
			d.tickets[id] = t
		}
	})
	return nil
}

func (s *MemoryStore) CountAdvertised(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.data.tickets {
		if t.Advertised {
			n++
		}
	}
	return n, nil
}

// LockAdvertising is a no-op: WithTx already serializes transactions.
func (s *MemoryStore) LockAdvertising(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) DecrementInventory(ctx context.Context, ticketID uint, qty uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.tickets[ticketID]
	if !ok || t.QuantityRemaining < qty {
		return false, nil
	}
	t.QuantityRemaining -= qty
	s.data.tickets[ticketID] = t
	s.record(func(d *memoryData) {
		if t, ok := d.tickets[ticketID]; ok {
			t.QuantityRemaining += qty
			d.tickets[ticketID] = t
		}
	})
	return true, nil
}

func (s *MemoryStore) TicketStats(ctx context.Context, vendorID uint) (map[types.VerificationStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := map[types.VerificationStatus]int64{}
	for _, t := range s.data.tickets {
		if vendorID != 0 && t.VendorID != vendorID {
			continue
		}
		stats[t.Verification]++
	}
	return stats, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.data.id()
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	s.data.bookings[b.ID] = *b
	id := b.ID
	s.record(func(d *memoryData) { delete(d.bookings, id) })
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint, forUpdate bool) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, lifecycle.ErrNotFound)
	}
	if txn, ok := s.data.transactions[id]; ok {
		b.Transaction = &txn
	}
	return &b, nil
}

func (s *MemoryStore) TransitionBooking(ctx context.Context, id uint, from, to types.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	s.data.bookings[id] = b
	s.record(func(d *memoryData) {
		if b, ok := d.bookings[id]; ok && b.Status == to {
			b.Status = from
			d.bookings[id] = b
		}
	})
	return true, nil
}

func (f BookingFilter) matches(b models.Booking) bool {
	if f.UserID != 0 && b.UserID != f.UserID {
		return false
	}
	if f.VendorID != 0 && b.VendorID != f.VendorID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func (s *MemoryStore) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.data.bookings {
		if !f.matches(b) {
			continue
		}
		if txn, ok := s.data.transactions[b.ID]; ok {
			b.Transaction = &txn
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) BookingStats(ctx context.Context, f BookingFilter) (map[types.BookingStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := map[types.BookingStatus]int64{}
	for _, b := range s.data.bookings {
		if f.matches(b) {
			stats[b.Status]++
		}
	}
	return stats, nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.transactions[t.BookingID]; ok {
		return fmt.Errorf("transaction for booking %d: %w", t.BookingID, ErrDuplicate)
	}
	if _, ok := s.data.providerIDs[t.ProviderTransactionID]; ok {
		return fmt.Errorf("provider transaction %s: %w", t.ProviderTransactionID, ErrDuplicate)
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.data.transactions[t.BookingID] = *t
	s.data.providerIDs[t.ProviderTransactionID] = t.BookingID
	bookingID, providerID := t.BookingID, t.ProviderTransactionID
	s.record(func(d *memoryData) {
		delete(d.transactions, bookingID)
		delete(d.providerIDs, providerID)
	})
	return nil
}

func (s *MemoryStore) GetTransactionByBooking(ctx context.Context, bookingID uint) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.transactions[bookingID]
	if !ok {
		return nil, fmt.Errorf("transaction for booking %d: %w", bookingID, lifecycle.ErrNotFound)
	}
	return &t, nil
}

func (s *MemoryStore) transactionsFor(f TransactionFilter) []models.Transaction {
	var out []models.Transaction
	for _, t := range s.data.transactions {
		if f.UserID != 0 && t.UserID != f.UserID {
			continue
		}
		if f.VendorID != 0 && s.data.bookings[t.BookingID].VendorID != f.VendorID {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *MemoryStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.transactionsFor(f)
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (s *MemoryStore) Revenue(ctx context.Context, f TransactionFilter) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, t := range s.transactionsFor(f) {
		total = total.Add(t.Amount)
	}
	return total, nil
}
