package types

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Role string

const (
	ROLE_CUSTOMER Role = "customer"
	ROLE_VENDOR   Role = "vendor"
	ROLE_ADMIN    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case ROLE_CUSTOMER, ROLE_VENDOR, ROLE_ADMIN:
		return true
	}
	return false
}

type TransportMode string

const (
	TRANSPORT_BUS    TransportMode = "bus"
	TRANSPORT_TRAIN  TransportMode = "train"
	TRANSPORT_FLIGHT TransportMode = "flight"
	TRANSPORT_LAUNCH TransportMode = "launch"
)

func (t TransportMode) Valid() bool {
	switch t {
	case TRANSPORT_BUS, TRANSPORT_TRAIN, TRANSPORT_FLIGHT, TRANSPORT_LAUNCH:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VERIFICATION_PENDING  VerificationStatus = "pending"
	VERIFICATION_APPROVED VerificationStatus = "approved"
	VERIFICATION_REJECTED VerificationStatus = "rejected"
)

// MaxAdvertised is the system-wide cap on concurrently advertised tickets.
const MaxAdvertised = 6

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TicketQueryFilters struct {
	From      string        `form:"from"`
	To        string        `form:"to"`
	Transport TransportMode `form:"transport" binding:"omitempty,transport"`
	Sort      string        `form:"sort" binding:"omitempty,oneof=price_asc price_desc"`
	Page      int           `form:"page" binding:"omitempty,min=1"`
	Limit     int           `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CreateTicketRequestBody struct {
	Title         string          `json:"title" binding:"required"`
	From          string          `json:"from" binding:"required"`
	To            string          `json:"to" binding:"required,nefield=From"`
	Transport     TransportMode   `json:"transport" binding:"required,transport"`
	Price         decimal.Decimal `json:"price"`
	Quantity      uint            `json:"quantity" binding:"required,min=1"`
	DepartureDate string          `json:"departureDate" binding:"required,departure=DepartureTime"`
	DepartureTime string          `json:"departureTime" binding:"required"`
	Perks         []string        `json:"perks"`
	Image         string          `json:"image" binding:"omitempty,url"`
}

type VerifyTicketRequestBody struct {
	Status VerificationStatus `json:"status" binding:"required,oneof=approved rejected"`
}

type AdvertiseTicketRequestBody struct {
	Advertised *bool `json:"advertised" binding:"required"`
}

type CreateBookingRequestBody struct {
	TicketID uint   `json:"ticketId" binding:"required"`
	Quantity uint   `json:"quantity" binding:"required,min=1"`
	Status   string `json:"status"`
}

type UpdateBookingStatusRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type CreatePaymentIntentRequestBody struct {
	BookingID uint             `json:"bookingId" binding:"required"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

type CreatePaymentRequestBody struct {
	BookingID     uint             `json:"bookingId" binding:"required"`
	TransactionID string           `json:"transactionId" binding:"required"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	TicketTitle   string           `json:"ticketTitle"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// BookingEvent is the payload published on the booking events topic.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   uint      `json:"bookingId"`
	UserID      uint      `json:"userId"`
	RecipientID uint      `json:"recipientId"`
	Email       string    `json:"email,omitempty"`
	Status      string    `json:"status"`
	TicketTitle string    `json:"ticketTitle"`
	Amount      string    `json:"amount,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

const (
	EVENT_BOOKING_REQUESTED = "booking.requested"
	EVENT_BOOKING_ACCEPTED  = "booking.accepted"
	EVENT_BOOKING_REJECTED  = "booking.rejected"
	EVENT_BOOKING_PAID      = "booking.paid"
)

// PaymentIntent is the provider-neutral view of a card payment intent.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"amountMinor"`
	Currency     string `json:"currency"`
	Succeeded    bool   `json:"succeeded"`
	BookingID    uint   `json:"bookingId"`
}
