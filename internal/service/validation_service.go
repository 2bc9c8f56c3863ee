package service

import (
	"context"
	"fmt"

	"github.com/eventix/eventix/internal/clock"
	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/repository"
	"github.com/eventix/eventix/pkg/events"
	"github.com/eventix/eventix/pkg/logger"
)

// ValidationService checks a scanned code at the door and marks the
// ticket used exactly once, even when two scanners race on the same code.
type ValidationService interface {
	Validate(ctx context.Context, code string) (*domain.ValidationResult, error)
}

type validationService struct {
	ticketRepo repository.TicketRepository
	userRepo   repository.UserRepository
	eventBus   events.Publisher
	clock      clock.Clock
}

func NewValidationService(
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
	eventBus events.Publisher,
	clk clock.Clock,
) ValidationService {
	return &validationService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		eventBus:   eventBus,
		clock:      clk,
	}
}

func (s *validationService) Validate(ctx context.Context, code string) (*domain.ValidationResult, error) {
	if code == "" {
		return nil, fmt.Errorf("QR code is required")
	}

	now := s.clock.Now()

	// Single compare-and-swap keyed by the unique code. Only one of two
	// concurrent scans can win; the loser falls through to classification
	// and sees the ticket already used.
	ticket, err := s.ticketRepo.MarkUsedByCode(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if ticket != nil {
		if err := s.eventBus.Publish(ctx, events.TicketValidated, events.TicketValidatedEvent{
			TicketID:    ticket.ID,
			EventID:     ticket.EventID,
			ValidatedAt: now,
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to publish ticket validated event", "error", err, "ticket_id", ticket.ID)
		}

		return &domain.ValidationResult{
			Valid:   true,
			Reason:  domain.ValidationOK,
			Message: "Ticket validated successfully",
			Ticket:  s.summarize(ctx, ticket, true),
		}, nil
	}

	ticket, err = s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return &domain.ValidationResult{
			Valid:   false,
			Reason:  domain.ValidationNotFound,
			Message: "Ticket not found",
		}, nil
	}

	// Precedence: a used ticket reports already_used even when its event
	// has since passed.
	switch {
	case ticket.Status == domain.TicketUsed:
		return &domain.ValidationResult{
			Valid:   false,
			Reason:  domain.ValidationAlreadyUsed,
			Message: "Ticket already used",
			Ticket:  s.summarize(ctx, ticket, false),
		}, nil
	case ticket.Status == domain.TicketCancelled:
		return &domain.ValidationResult{
			Valid:   false,
			Reason:  domain.ValidationCancelled,
			Message: "Ticket cancelled",
			Ticket:  s.summarize(ctx, ticket, false),
		}, nil
	case ticket.EventDate.Before(now):
		return &domain.ValidationResult{
			Valid:   false,
			Reason:  domain.ValidationEventPassed,
			Message: "Event has passed",
			Ticket:  s.summarize(ctx, ticket, false),
		}, nil
	default:
		return &domain.ValidationResult{
			Valid:   false,
			Reason:  domain.ValidationExpired,
			Message: "Ticket expired",
			Ticket:  s.summarize(ctx, ticket, false),
		}, nil
	}
}

func (s *validationService) summarize(ctx context.Context, ticket *domain.Ticket, full bool) *domain.ValidatedTicket {
	holderName := "Unknown"
	holderEmail := ""
	if user, err := s.userRepo.FindByID(ctx, ticket.UserID); err == nil && user != nil {
		holderName = user.Name
		holderEmail = user.Email
	}

	summary := &domain.ValidatedTicket{
		ID:         ticket.ID,
		EventTitle: ticket.EventTitle,
		UserName:   holderName,
		Status:     ticket.Status,
	}
	if full {
		eventDate := ticket.EventDate
		summary.EventLocation = ticket.EventLocation
		summary.EventDate = &eventDate
		summary.UserEmail = holderEmail
		summary.Price = ticket.Price
	}
	return summary
}
