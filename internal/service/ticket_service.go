package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventix/eventix/internal/clock"
	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/mailer"
	"github.com/eventix/eventix/internal/repository"
	"github.com/eventix/eventix/internal/ticketcode"
	"github.com/eventix/eventix/pkg/events"
	"github.com/eventix/eventix/pkg/logger"
)

type TicketService interface {
	Purchase(ctx context.Context, userID string, req *domain.PurchaseRequest) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error)
	ListUserTickets(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error)
	Activate(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error)
	Cancel(ctx context.Context, ticketID, requestingUserID string) error
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	eventRepo  repository.EventRepository
	userRepo   repository.UserRepository
	eventBus   events.Publisher
	mailer     mailer.Service
	clock      clock.Clock
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	eventBus events.Publisher,
	mail mailer.Service,
	clk clock.Clock,
) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		userRepo:   userRepo,
		eventBus:   eventBus,
		mailer:     mail,
		clock:      clk,
	}
}

// Purchase reserves one unit of the event's inventory, then writes the
// ticket with title/location/date/price frozen at this instant. If the
// ticket write fails the reservation is rolled back, so the counter and
// the ledger never diverge.
func (s *ticketService) Purchase(ctx context.Context, userID string, req *domain.PurchaseRequest) (*domain.Ticket, error) {
	if req.EventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	now := s.clock.Now()
	// Fast path for the obvious failures; the reserve statement below
	// re-checks both conditions atomically.
	if !event.IsUpcoming(now) {
		return nil, domain.ErrEventEnded
	}
	if !event.HasTicketsAvailable() {
		return nil, domain.ErrSoldOut
	}
	if err := s.eventRepo.Reserve(ctx, event.ID, now); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		UserID:        user.ID,
		EventTitle:    event.Title,
		EventLocation: event.Location,
		EventDate:     event.Date,
		Status:        domain.TicketPending,
		PurchaseDate:  now,
		Price:         event.Price,
		QRCode:        ticketcode.New(event.ID, user.ID, now),
		SeatNumber:    req.SeatNumber,
	}

	if err := s.ticketRepo.Insert(ctx, ticket); err != nil {
		if relErr := s.eventRepo.Release(ctx, event.ID); relErr != nil {
			logger.ErrorContext(ctx, "Failed to roll back reservation", "error", relErr, "event_id", event.ID)
		}
		return nil, fmt.Errorf("failed to persist ticket: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.TicketPurchased, events.TicketPurchasedEvent{
		TicketID:    ticket.ID,
		EventID:     event.ID,
		UserID:      user.ID,
		EventTitle:  event.Title,
		Price:       ticket.Price,
		PurchasedAt: ticket.PurchaseDate,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ticket purchased event", "error", err, "ticket_id", ticket.ID)
	}

	if err := s.mailer.SendTicketConfirmation(user.Email, user.Name, ticket); err != nil {
		logger.WarnContext(ctx, "Failed to send ticket confirmation", "error", err, "ticket_id", ticket.ID)
	}

	return ticket, nil
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}
	if !ticket.IsOwnedBy(requestingUserID) {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

func (s *ticketService) ListUserTickets(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	return s.ticketRepo.ListByUser(ctx, userID, status, limit, offset)
}

func (s *ticketService) Activate(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}
	if !ticket.IsOwnedBy(requestingUserID) {
		return nil, domain.ErrForbidden
	}

	ok, err := s.ticketRepo.UpdateStatus(ctx, ticket.ID, domain.TicketPending, domain.TicketActive)
	if err != nil {
		return nil, fmt.Errorf("failed to activate ticket: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	ticket.Status = domain.TicketActive

	if err := s.eventBus.Publish(ctx, events.TicketActivated, map[string]string{
		"ticket_id": ticket.ID,
		"event_id":  ticket.EventID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ticket activated event", "error", err, "ticket_id", ticket.ID)
	}

	return ticket, nil
}

// Cancel deletes the ticket and restores one unit to the event's
// inventory. Used tickets cannot be cancelled.
func (s *ticketService) Cancel(ctx context.Context, ticketID, requestingUserID string) error {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return domain.ErrTicketNotFound
	}
	if !ticket.IsOwnedBy(requestingUserID) {
		return domain.ErrForbidden
	}
	if !ticket.CanCancel() {
		return domain.ErrInvalidStatus
	}

	deleted, err := s.ticketRepo.Delete(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if !deleted {
		return domain.ErrTicketNotFound
	}

	if err := s.eventRepo.Release(ctx, ticket.EventID); err != nil {
		// The event may have been deleted since purchase; the ticket is
		// gone either way.
		if !errors.Is(err, domain.ErrEventNotFound) {
			logger.ErrorContext(ctx, "Failed to restore inventory after cancellation", "error", err, "event_id", ticket.EventID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.TicketCancelled, events.TicketCancelledEvent{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ticket cancelled event", "error", err, "ticket_id", ticket.ID)
	}

	return nil
}
