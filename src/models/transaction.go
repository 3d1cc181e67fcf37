package models

import (
	"ticketbari/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is append-only. The unique indexes make a replayed payment
// confirmation collapse onto the existing row.
type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	BookingID             uint            `gorm:"uniqueIndex" json:"bookingId"`
	UserID                uint            `gorm:"index" json:"userId"`
	ProviderTransactionID string          `gorm:"uniqueIndex" json:"transactionId"`
	Amount                decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency              string          `json:"currency"`
	TicketTitle           string          `json:"ticketTitle"`
	PaidAt                time.Time       `json:"paidAt"`

	types.Timestamps
}
