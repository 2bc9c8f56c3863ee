package domain

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Location         string    `json:"location"`
	Date             time.Time `json:"date"`
	Price            float64   `json:"price"`
	ImageURL         string    `json:"imageUrl"`
	AvailableTickets int       `json:"availableTickets"`
	OrganizerName    string    `json:"organizerName"`
	OrganizerID      *string   `json:"organizerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Date.After(now)
}

func (e *Event) HasTicketsAvailable() bool {
	return e.AvailableTickets > 0
}

// IsOwnedBy reports whether the given user created the event.
func (e *Event) IsOwnedBy(userID string) bool {
	return e.OrganizerID != nil && *e.OrganizerID == userID
}

const defaultImageURL = "https://picsum.photos/800/450"

type CreateEventRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Location         string    `json:"location"`
	Date             time.Time `json:"date"`
	Price            float64   `json:"price"`
	ImageURL         string    `json:"imageUrl"`
	AvailableTickets int       `json:"availableTickets"`
}

func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Location = strings.TrimSpace(r.Location)
	if r.ImageURL == "" {
		r.ImageURL = defaultImageURL
	}
}

func (r *CreateEventRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	if r.Category == "" {
		return fmt.Errorf("category is required")
	}
	if r.Location == "" {
		return fmt.Errorf("location is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if r.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if r.AvailableTickets < 0 {
		return fmt.Errorf("availableTickets must not be negative")
	}
	return nil
}

// EventPatch is a partial update: a nil field leaves the column unchanged.
type EventPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Category         *string    `json:"category,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	Price            *float64   `json:"price,omitempty"`
	ImageURL         *string    `json:"imageUrl,omitempty"`
	AvailableTickets *int       `json:"availableTickets,omitempty"`
}

func (p *EventPatch) Validate() error {
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.AvailableTickets != nil && *p.AvailableTickets < 0 {
		return fmt.Errorf("availableTickets must not be negative")
	}
	return nil
}

// EventFilter narrows public event listings.
type EventFilter struct {
	Category     string
	Search       string
	UpcomingOnly bool
}

type OrganizerStats struct {
	TotalEvents      int     `json:"totalEvents"`
	UpcomingEvents   int     `json:"upcomingEvents"`
	TotalTicketsSold int     `json:"totalTicketsSold"`
	TotalRevenue     float64 `json:"totalRevenue"`
}
