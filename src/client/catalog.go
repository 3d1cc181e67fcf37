package client

import (
	"sort"
	"strings"
	"ticketbari/src/models"
	"ticketbari/src/types"
)

// TicketFilter narrows a fetched catalog locally. The result is display state
// only; booking legality is always decided by the server.
type TicketFilter struct {
	From      string
	To        string
	Transport types.TransportMode
	Sort      string
	Page      int
	PerPage   int
}

type TicketPage struct {
	Tickets    []models.Ticket
	Total      int
	Page       int
	TotalPages int
}

func FilterTickets(tickets []models.Ticket, f TicketFilter) TicketPage {
	matched := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.From != "" && !strings.Contains(strings.ToLower(t.From), strings.ToLower(f.From)) {
			continue
		}
		if f.To != "" && !strings.Contains(strings.ToLower(t.To), strings.ToLower(f.To)) {
			continue
		}
		if f.Transport != "" && t.Transport != f.Transport {
			continue
		}
		matched = append(matched, t)
	}
	switch f.Sort {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.LessThan(matched[j].Price) })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.GreaterThan(matched[j].Price) })
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 9
	}
	total := len(matched)
	totalPages := (total + perPage - 1) / perPage
	page := f.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return TicketPage{Tickets: matched[start:end], Total: total, Page: page, TotalPages: totalPages}
}
