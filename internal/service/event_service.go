package service

import (
	"context"
	"fmt"

	"github.com/eventix/eventix/internal/clock"
	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/repository"
)

// EventService serves the public, unauthenticated event catalog.
type EventService interface {
	ListEvents(ctx context.Context, filter domain.EventFilter, limit, offset int) ([]domain.Event, int, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	Categories(ctx context.Context) ([]string, error)
}

type eventService struct {
	eventRepo repository.EventRepository
	clock     clock.Clock
}

func NewEventService(eventRepo repository.EventRepository, clk clock.Clock) EventService {
	return &eventService{
		eventRepo: eventRepo,
		clock:     clk,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, limit, offset int) ([]domain.Event, int, error) {
	return s.eventRepo.List(ctx, filter, s.clock.Now(), limit, offset)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) Categories(ctx context.Context) ([]string, error) {
	return s.eventRepo.Categories(ctx)
}
