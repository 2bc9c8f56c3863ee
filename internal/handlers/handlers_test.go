package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/pkg/auth"
	"github.com/eventix/eventix/pkg/config"
)

const testSecret = "test-secret"

// ---------- Stub services ----------

type stubAuthService struct {
	register func(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error)
	login    func(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	refresh  func(ctx context.Context, token string) (*domain.LoginResponse, error)
	getUser  func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	return s.register(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return s.login(ctx, req)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*domain.LoginResponse, error) {
	return s.refresh(ctx, token)
}

func (s *stubAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, id)
}

type stubUserService struct {
	profile        func(ctx context.Context, userID string) (*domain.User, error)
	updateProfile  func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	changePassword func(ctx context.Context, userID string, req *domain.PasswordChangeRequest) error
	deleteAccount  func(ctx context.Context, userID string) error
	publicProfile  func(ctx context.Context, id string) (*domain.PublicProfile, error)
}

func (s *stubUserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profile(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateProfile(ctx, userID, patch)
}

func (s *stubUserService) ChangePassword(ctx context.Context, userID string, req *domain.PasswordChangeRequest) error {
	return s.changePassword(ctx, userID, req)
}

func (s *stubUserService) DeleteAccount(ctx context.Context, userID string) error {
	return s.deleteAccount(ctx, userID)
}

func (s *stubUserService) PublicProfile(ctx context.Context, id string) (*domain.PublicProfile, error) {
	return s.publicProfile(ctx, id)
}

type stubEventService struct {
	list       func(ctx context.Context, filter domain.EventFilter, limit, offset int) ([]domain.Event, int, error)
	get        func(ctx context.Context, id string) (*domain.Event, error)
	categories func(ctx context.Context) ([]string, error)
}

func (s *stubEventService) ListEvents(ctx context.Context, filter domain.EventFilter, limit, offset int) ([]domain.Event, int, error) {
	return s.list(ctx, filter, limit, offset)
}

func (s *stubEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.get(ctx, id)
}

func (s *stubEventService) Categories(ctx context.Context) ([]string, error) {
	return s.categories(ctx)
}

type stubTicketService struct {
	purchase func(ctx context.Context, userID string, req *domain.PurchaseRequest) (*domain.Ticket, error)
	get      func(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	list     func(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error)
	activate func(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	cancel   func(ctx context.Context, ticketID, userID string) error
}

func (s *stubTicketService) Purchase(ctx context.Context, userID string, req *domain.PurchaseRequest) (*domain.Ticket, error) {
	return s.purchase(ctx, userID, req)
}

func (s *stubTicketService) GetTicket(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	return s.get(ctx, ticketID, userID)
}

func (s *stubTicketService) ListUserTickets(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	return s.list(ctx, userID, status, limit, offset)
}

func (s *stubTicketService) Activate(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	return s.activate(ctx, ticketID, userID)
}

func (s *stubTicketService) Cancel(ctx context.Context, ticketID, userID string) error {
	return s.cancel(ctx, ticketID, userID)
}

type stubValidationService struct {
	validate func(ctx context.Context, code string) (*domain.ValidationResult, error)
}

func (s *stubValidationService) Validate(ctx context.Context, code string) (*domain.ValidationResult, error) {
	return s.validate(ctx, code)
}

type stubOrganizerService struct {
	create    func(ctx context.Context, organizerID string, req *domain.CreateEventRequest) (*domain.Event, error)
	list      func(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error)
	update    func(ctx context.Context, actorID string, actorRole domain.Role, eventID string, patch domain.EventPatch) (*domain.Event, error)
	delete    func(ctx context.Context, actorID string, actorRole domain.Role, eventID string) error
	attendees func(ctx context.Context, actorID string, actorRole domain.Role, eventID string) (*domain.Event, []domain.Attendee, error)
	stats     func(ctx context.Context, organizerID string) (*domain.OrganizerStats, error)
}

func (s *stubOrganizerService) CreateEvent(ctx context.Context, organizerID string, req *domain.CreateEventRequest) (*domain.Event, error) {
	return s.create(ctx, organizerID, req)
}

func (s *stubOrganizerService) ListEvents(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error) {
	return s.list(ctx, organizerID, limit, offset)
}

func (s *stubOrganizerService) UpdateEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	return s.update(ctx, actorID, actorRole, eventID, patch)
}

func (s *stubOrganizerService) DeleteEvent(ctx context.Context, actorID string, actorRole domain.Role, eventID string) error {
	return s.delete(ctx, actorID, actorRole, eventID)
}

func (s *stubOrganizerService) Attendees(ctx context.Context, actorID string, actorRole domain.Role, eventID string) (*domain.Event, []domain.Attendee, error) {
	return s.attendees(ctx, actorID, actorRole, eventID)
}

func (s *stubOrganizerService) Stats(ctx context.Context, organizerID string) (*domain.OrganizerStats, error) {
	return s.stats(ctx, organizerID)
}

// ---------- Helpers ----------

type testDeps struct {
	auth      *stubAuthService
	users     *stubUserService
	events    *stubEventService
	tickets   *stubTicketService
	validate  *stubValidationService
	organizer *stubOrganizerService
}

// testRouter mirrors the API route layout from cmd/api.
func testRouter(d testDeps) http.Handler {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: testSecret}}
	h := New(d.auth, d.users, d.events, d.tickets, d.validate, d.organizer, cfg)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.With(h.RequireJWT("")).Get("/me", h.Me)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Get("/profile", h.Profile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/profile/password", h.ChangePassword)
			r.Delete("/profile", h.DeleteAccount)
			r.Get("/{id}", h.GetUserProfile)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Get("/categories", h.ListCategories)
			r.Get("/{id}", h.GetEvent)
		})
		r.Route("/tickets", func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Get("/", h.ListMyTickets)
			r.Post("/purchase", h.PurchaseTicket)
			r.Get("/{id}", h.GetMyTicket)
			r.Post("/{id}/activate", h.ActivateTicket)
			r.Delete("/{id}", h.CancelTicket)
		})
		r.Route("/organizer", func(r chi.Router) {
			r.Use(h.RequireJWT(domain.RoleOrganizer))
			r.Get("/events", h.ListOrganizerEvents)
			r.Post("/events", h.CreateEvent)
			r.Put("/events/{id}", h.UpdateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)
			r.Get("/events/{id}/attendees", h.ListAttendees)
			r.Post("/validate-ticket", h.ValidateTicket)
			r.Get("/stats", h.OrganizerStats)
		})
	})
	return r
}

func mintToken(t *testing.T, sub, role string) string {
	t.Helper()
	token, err := auth.NewAccessToken(sub, sub+"@example.com", role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
