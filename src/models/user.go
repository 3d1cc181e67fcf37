package models

import (
	"ticketbari/src/types"
)

type User struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UID           string     `gorm:"uniqueIndex" json:"uid,omitempty"`
	Name          string     `json:"name,omitempty"`
	Email         string     `gorm:"index" json:"email,omitempty"`
	Role          types.Role `gorm:"default:customer" json:"role,omitempty"`
	EmailVerified bool       `json:"emailVerified,omitempty"`

	Bookings []Booking `gorm:"foreignKey:UserID" json:"bookings,omitempty"`
	Tickets  []Ticket  `gorm:"foreignKey:VendorID" json:"tickets,omitempty"`

	types.Timestamps
}
