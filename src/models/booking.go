package models

import (
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// Booking keeps a snapshot of the ticket at request time so history stays
// readable after the listing changes.
type Booking struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	TicketID      uint                `gorm:"index" json:"ticketId"`
	UserID        uint                `gorm:"index" json:"userId"`
	VendorID      uint                `gorm:"index" json:"vendorId"`
	Quantity      uint                `json:"quantity"`
	UnitPrice     decimal.Decimal     `gorm:"type:numeric(12,2)" json:"unitPrice"`
	TotalPrice    decimal.Decimal     `gorm:"type:numeric(12,2)" json:"totalPrice"`
	Status        types.BookingStatus `gorm:"index;default:pending" json:"status"`
	DepartureDate string              `json:"departureDate"`
	DepartureTime string              `json:"departureTime"`
	DepartureAt   time.Time           `json:"departureAt"`
	TicketTitle   string              `json:"ticketTitle"`
	TicketImage   string              `json:"ticketImage,omitempty"`
	From          string              `gorm:"column:origin" json:"from"`
	To            string              `gorm:"column:destination" json:"to"`

	Ticket      *Ticket      `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Transaction *Transaction `gorm:"foreignKey:BookingID" json:"transaction,omitempty"`

	types.Timestamps
}

// EffectiveStatus reports the status with the derived expired overlay applied.
func (b *Booking) EffectiveStatus(now time.Time) types.BookingStatus {
	return b.Status.Effective(b.DepartureAt, now)
}
