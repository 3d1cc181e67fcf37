package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/types"

	"github.com/shopspring/decimal"
)

var _ lifecycle.Backend = (*Client)(nil)

type TicketQuery struct {
	From      string
	To        string
	Transport types.TransportMode
	Sort      string
	Page      int
	Limit     int
}

func (q TicketQuery) values() url.Values {
	v := url.Values{}
	if q.From != "" {
		v.Set("from", q.From)
	}
	if q.To != "" {
		v.Set("to", q.To)
	}
	if q.Transport != "" {
		v.Set("transport", string(q.Transport))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) ListTickets(ctx context.Context, q TicketQuery) ([]models.Ticket, error) {
	path := "/tickets/all"
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}
	var tickets []models.Ticket
	err := c.do(ctx, http.MethodGet, path, nil, &tickets)
	return tickets, err
}

func (c *Client) AdvertisedTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := c.do(ctx, http.MethodGet, "/tickets/advertised", nil, &tickets)
	return tickets, err
}

func (c *Client) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d", id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) CreateTicket(ctx context.Context, body types.CreateTicketRequestBody) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) VerifyTicket(ctx context.Context, id uint, status types.VerificationStatus) (*models.Ticket, error) {
	var ticket models.Ticket
	body := types.VerifyTicketRequestBody{Status: status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tickets/%d/verify", id), body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) AdvertiseTicket(ctx context.Context, id uint, advertised bool) (*models.Ticket, error) {
	var ticket models.Ticket
	body := types.AdvertiseTicketRequestBody{Advertised: &advertised}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tickets/%d/advertise", id), body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) CreateBooking(ctx context.Context, ticketID uint, quantity uint) (*models.Booking, error) {
	body := types.CreateBookingRequestBody{TicketID: ticketID, Quantity: quantity, Status: "Pending"}
	var booking models.Booking
	if err := c.do(ctx, http.MethodPost, "/booking", body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d", id), nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus) (*models.Booking, error) {
	body := types.UpdateBookingStatusRequestBody{Status: string(status)}
	var booking models.Booking
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/bookings/%d/status", id), body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) VendorBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.do(ctx, http.MethodGet, "/vendor/bookings", nil, &bookings)
	return bookings, err
}

func (c *Client) UserBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.do(ctx, http.MethodGet, "/user/bookings", nil, &bookings)
	return bookings, err
}

func (c *Client) CreatePaymentIntent(ctx context.Context, bookingID uint, amount decimal.Decimal) (string, error) {
	body := types.CreatePaymentIntentRequestBody{BookingID: bookingID, Amount: &amount}
	var res types.PaymentIntentResponse
	if err := c.do(ctx, http.MethodPost, "/create-payment-intent", body, &res); err != nil {
		return "", err
	}
	return res.ClientSecret, nil
}

func (c *Client) RecordPayment(ctx context.Context, payment lifecycle.PaymentRecord) (*models.Transaction, error) {
	var txn models.Transaction
	if err := c.do(ctx, http.MethodPost, "/payments", payment, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *Client) UserTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := c.do(ctx, http.MethodGet, "/user/transactions", nil, &txns)
	return txns, err
}
