package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eventix/eventix/internal/domain"
)

// ---------- Fakes ----------

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int
	events map[string]*domain.Event
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		cp := *e
		r.events[e.ID] = &cp
	}
	return r
}

func (r *fakeEventRepo) Create(_ context.Context, e *domain.Event) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *e
	cp.ID = fmt.Sprintf("evt-%d", r.seq)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.events[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) List(_ context.Context, filter domain.EventFilter, now time.Time, limit, offset int) ([]domain.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.UpcomingOnly && !e.Date.After(now) {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (r *fakeEventRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.events {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListByOrganizer(_ context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.IsOwnedBy(organizerID) {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (r *fakeEventRepo) Update(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Price != nil {
		e.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		e.ImageURL = *patch.ImageURL
	}
	if patch.AvailableTickets != nil {
		e.AvailableTickets = *patch.AvailableTickets
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	return true, nil
}

func (r *fakeEventRepo) CountByOrganizer(_ context.Context, organizerID string, now time.Time) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, upcoming int
	for _, e := range r.events {
		if !e.IsOwnedBy(organizerID) {
			continue
		}
		total++
		if e.Date.After(now) {
			upcoming++
		}
	}
	return total, upcoming, nil
}

func (r *fakeEventRepo) Reserve(_ context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.AvailableTickets <= 0 {
		return domain.ErrSoldOut
	}
	if !e.Date.After(now) {
		return domain.ErrEventEnded
	}
	e.AvailableTickets--
	return nil
}

func (r *fakeEventRepo) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.AvailableTickets++
	return nil
}

func (r *fakeEventRepo) available(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		return e.AvailableTickets
	}
	return -1
}

type fakeTicketRepo struct {
	mu        sync.Mutex
	tickets   map[string]*domain.Ticket
	owners    map[string]string // event ID -> organizer ID, for sales queries
	insertErr error
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{
		tickets: make(map[string]*domain.Ticket),
		owners:  make(map[string]string),
	}
	for _, t := range tickets {
		cp := *t
		r.tickets[t.ID] = &cp
	}
	return r
}

func (r *fakeTicketRepo) Insert(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.QRCode == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) ListByUser(_ context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.UserID != userID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (r *fakeTicketRepo) ListAttendees(_ context.Context, eventID string) ([]domain.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Attendee, 0)
	for _, t := range r.tickets {
		if t.EventID != eventID {
			continue
		}
		out = append(out, domain.Attendee{
			TicketID:     t.ID,
			Status:       t.Status,
			PurchaseDate: t.PurchaseDate,
			QRCode:       t.QRCode,
		})
	}
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return false, nil
	}
	delete(r.tickets, id)
	return true, nil
}

func (r *fakeTicketRepo) SalesByOrganizer(_ context.Context, organizerID string) (int, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sold int
	var revenue float64
	for _, t := range r.tickets {
		if r.owners[t.EventID] == organizerID {
			sold++
			revenue += t.Price
		}
	}
	return sold, revenue, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, from, to domain.TicketStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (r *fakeTicketRepo) MarkUsedByCode(_ context.Context, code string, now time.Time) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.QRCode != code {
			continue
		}
		if (t.Status == domain.TicketPending || t.Status == domain.TicketActive) && !t.EventDate.Before(now) {
			t.Status = domain.TicketUsed
			cp := *t
			return &cp, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == req.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	u := &domain.User{
		ID:           fmt.Sprintf("usr-%d", r.seq),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         req.Role,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *patch.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = passwordHash
	return true, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []string
}

func (b *fakeBus) Publish(_ context.Context, subject string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, subject)
	return nil
}

func (b *fakeBus) Close() error { return nil }

type fakeMailer struct {
	mu   sync.Mutex
	sent int
}

func (m *fakeMailer) SendTicketConfirmation(_, _ string, _ *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}
