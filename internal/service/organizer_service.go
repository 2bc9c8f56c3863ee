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

// OrganizerService covers event management and door-side reporting.
// Callers must already hold the organizer or admin role; per-event
// ownership is still checked here.
type OrganizerService interface {
	CreateEvent(ctx context.Context, organizerID string, req *domain.CreateEventRequest) (*domain.Event, error)
	ListEvents(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error)
	UpdateEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string, patch domain.EventPatch) (*domain.Event, error)
	DeleteEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string) error
	Attendees(ctx context.Context, actorID string, actorRole domain.Role, eventID string) (*domain.Event, []domain.Attendee, error)
	Stats(ctx context.Context, organizerID string) (*domain.OrganizerStats, error)
}

type organizerService struct {
	eventRepo  repository.EventRepository
	ticketRepo repository.TicketRepository
	userRepo   repository.UserRepository
	eventBus   events.Publisher
	clock      clock.Clock
}

func NewOrganizerService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
	eventBus events.Publisher,
	clk clock.Clock,
) OrganizerService {
	return &organizerService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		eventBus:   eventBus,
		clock:      clk,
	}
}

func (s *organizerService) CreateEvent(ctx context.Context, organizerID string, req *domain.CreateEventRequest) (*domain.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	organizer, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up organizer: %w", err)
	}
	if organizer == nil {
		return nil, domain.ErrUserNotFound
	}

	event, err := s.eventRepo.Create(ctx, &domain.Event{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Location:         req.Location,
		Date:             req.Date,
		Price:            req.Price,
		ImageURL:         req.ImageURL,
		AvailableTickets: req.AvailableTickets,
		OrganizerName:    organizer.Name,
		OrganizerID:      &organizer.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.EventCreated, map[string]string{
		"event_id":     event.ID,
		"organizer_id": organizer.ID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event created event", "error", err, "event_id", event.ID)
	}

	return event, nil
}

func (s *organizerService) ListEvents(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error) {
	return s.eventRepo.ListByOrganizer(ctx, organizerID, limit, offset)
}

func (s *organizerService) UpdateEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	event, err := s.authorizeEvent(ctx, actorID, actorRole, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, event.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrEventNotFound
	}

	if err := s.eventBus.Publish(ctx, events.EventUpdated, map[string]string{
		"event_id": updated.ID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event updated event", "error", err, "event_id", updated.ID)
	}

	return updated, nil
}

func (s *organizerService) DeleteEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string) error {
	event, err := s.authorizeEvent(ctx, actorID, actorRole, eventID)
	if err != nil {
		return err
	}

	deleted, err := s.eventRepo.Delete(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !deleted {
		return domain.ErrEventNotFound
	}

	if err := s.eventBus.Publish(ctx, events.EventDeleted, map[string]string{
		"event_id": event.ID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event deleted event", "error", err, "event_id", event.ID)
	}

	return nil
}

func (s *organizerService) Attendees(ctx context.Context, actorID string, actorRole domain.Role, eventID string) (*domain.Event, []domain.Attendee, error) {
	event, err := s.authorizeEvent(ctx, actorID, actorRole, eventID)
	if err != nil {
		return nil, nil, err
	}

	attendees, err := s.ticketRepo.ListAttendees(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return event, attendees, nil
}

func (s *organizerService) Stats(ctx context.Context, organizerID string) (*domain.OrganizerStats, error) {
	total, upcoming, err := s.eventRepo.CountByOrganizer(ctx, organizerID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	sold, revenue, err := s.ticketRepo.SalesByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	return &domain.OrganizerStats{
		TotalEvents:      total,
		UpcomingEvents:   upcoming,
		TotalTicketsSold: sold,
		TotalRevenue:     revenue,
	}, nil
}

func (s *organizerService) authorizeEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsOwnedBy(actorID) && actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
