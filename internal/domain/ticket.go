package domain

import "time"

type TicketStatus string

const (
	TicketPending TicketStatus = "pending"
	TicketActive  TicketStatus = "active"
	TicketUsed    TicketStatus = "used"
	TicketExpired TicketStatus = "expired"
	// TicketCancelled is recognized by validation but never assigned:
	// cancelling a ticket deletes it and restores inventory instead.
	TicketCancelled TicketStatus = "cancelled"
)

func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(s) {
	case TicketPending, TicketActive, TicketUsed, TicketExpired, TicketCancelled:
		return TicketStatus(s), true
	default:
		return "", false
	}
}

// Ticket references its event and holder. The eventTitle/eventLocation/
// eventDate/price fields are snapshots frozen at purchase time; they do
// not follow later edits to the event. That divergence is intentional.
type Ticket struct {
	ID            string       `json:"id"`
	EventID       string       `json:"eventId"`
	UserID        string       `json:"userId"`
	EventTitle    string       `json:"eventTitle"`
	EventLocation string       `json:"eventLocation"`
	EventDate     time.Time    `json:"eventDate"`
	Status        TicketStatus `json:"status"`
	PurchaseDate  time.Time    `json:"purchaseDate"`
	Price         float64      `json:"price"`
	QRCode        string       `json:"qrCode"`
	SeatNumber    *string      `json:"seatNumber,omitempty"`
}

func (t *Ticket) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

// CanCancel permits cancellation for any ticket that has not been used.
func (t *Ticket) CanCancel() bool {
	return t.Status != TicketUsed
}

type PurchaseRequest struct {
	EventID    string  `json:"eventId"`
	SeatNumber *string `json:"seatNumber,omitempty"`
}

// Attendee is a ticket joined with its holder, for organizer views.
type Attendee struct {
	TicketID     string       `json:"ticketId"`
	UserName     string       `json:"userName"`
	UserEmail    string       `json:"userEmail"`
	UserPhone    *string      `json:"userPhone,omitempty"`
	Status       TicketStatus `json:"status"`
	PurchaseDate time.Time    `json:"purchaseDate"`
	QRCode       string       `json:"qrCode"`
}

// Validation outcome reasons, in precedence order.
const (
	ValidationNotFound    = "not_found"
	ValidationAlreadyUsed = "already_used"
	ValidationCancelled   = "cancelled"
	ValidationEventPassed = "event_passed"
	ValidationExpired     = "expired"
	ValidationOK          = "ok"
)

type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Reason  string           `json:"reason"`
	Message string           `json:"message"`
	Ticket  *ValidatedTicket `json:"ticket,omitempty"`
}

type ValidatedTicket struct {
	ID            string       `json:"id"`
	EventTitle    string       `json:"eventTitle"`
	EventLocation string       `json:"eventLocation,omitempty"`
	EventDate     *time.Time   `json:"eventDate,omitempty"`
	UserName      string       `json:"userName"`
	UserEmail     string       `json:"userEmail,omitempty"`
	Price         float64      `json:"price,omitempty"`
	Status        TicketStatus `json:"status"`
}
