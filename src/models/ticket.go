package models

import (
	"ticketbari/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID                uint                     `gorm:"primarykey" json:"id"`
	Title             string                   `json:"title"`
	Slug              string                   `gorm:"index" json:"slug"`
	From              string                   `gorm:"column:origin;index" json:"from"`
	To                string                   `gorm:"column:destination;index" json:"to"`
	Transport         types.TransportMode      `json:"transport"`
	Price             decimal.Decimal          `gorm:"type:numeric(12,2)" json:"price"`
	Quantity          uint                     `json:"quantity"`
	QuantityRemaining uint                     `gorm:"check:quantity_remaining <= quantity" json:"quantityRemaining"`
	DepartureDate     string                   `json:"departureDate"`
	DepartureTime     string                   `json:"departureTime"`
	DepartureAt       time.Time                `gorm:"index" json:"departureAt"`
	Perks             []string                 `gorm:"serializer:json" json:"perks"`
	Image             string                   `json:"image,omitempty"`
	VendorID          uint                     `gorm:"index" json:"vendorId"`
	Verification      types.VerificationStatus `gorm:"index;default:pending" json:"verification"`
	Advertised        bool                     `gorm:"index" json:"advertised"`

	Vendor *User `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`

	types.Timestamps
}

func (t *Ticket) Departed(now time.Time) bool {
	return !now.Before(t.DepartureAt)
}
