package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/eventix/eventix/internal/domain"
)

func TestValidateTicketHandler(t *testing.T) {
	t.Run("valid ticket answers 200", func(t *testing.T) {
		validate := &stubValidationService{
			validate: func(_ context.Context, code string) (*domain.ValidationResult, error) {
				if code != "code-1" {
					t.Errorf("code = %q", code)
				}
				return &domain.ValidationResult{
					Valid:   true,
					Reason:  domain.ValidationOK,
					Message: "Ticket validated successfully",
					Ticket:  &domain.ValidatedTicket{ID: "t1", UserName: "Jamie", Status: domain.TicketUsed},
				}, nil
			},
		}
		router := testRouter(testDeps{validate: validate})

		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "org1", "organizer"), `{"qrCode":"code-1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["valid"] != true || body["reason"] != "ok" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("already used answers 200 with valid false", func(t *testing.T) {
		validate := &stubValidationService{
			validate: func(_ context.Context, _ string) (*domain.ValidationResult, error) {
				return &domain.ValidationResult{Valid: false, Reason: domain.ValidationAlreadyUsed, Message: "Ticket already used"}, nil
			},
		}
		router := testRouter(testDeps{validate: validate})

		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "org1", "organizer"), `{"qrCode":"code-1"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["valid"] != false || body["reason"] != "already_used" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("unknown code answers 404", func(t *testing.T) {
		validate := &stubValidationService{
			validate: func(_ context.Context, _ string) (*domain.ValidationResult, error) {
				return &domain.ValidationResult{Valid: false, Reason: domain.ValidationNotFound, Message: "Ticket not found"}, nil
			},
		}
		router := testRouter(testDeps{validate: validate})

		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "org1", "organizer"), `{"qrCode":"nope"}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		router := testRouter(testDeps{validate: &stubValidationService{}})
		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "org1", "organizer"), `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("plain user is rejected at the role gate", func(t *testing.T) {
		router := testRouter(testDeps{validate: &stubValidationService{}})
		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "u1", "user"), `{"qrCode":"code-1"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin passes the role gate", func(t *testing.T) {
		validate := &stubValidationService{
			validate: func(_ context.Context, _ string) (*domain.ValidationResult, error) {
				return &domain.ValidationResult{Valid: true, Reason: domain.ValidationOK}, nil
			},
		}
		router := testRouter(testDeps{validate: validate})
		rec := doRequest(t, router, http.MethodPost, "/api/organizer/validate-ticket", mintToken(t, "adm1", "admin"), `{"qrCode":"code-1"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestCreateEventHandler(t *testing.T) {
	organizer := &stubOrganizerService{
		create: func(_ context.Context, organizerID string, req *domain.CreateEventRequest) (*domain.Event, error) {
			return &domain.Event{ID: "ev1", Title: req.Title, OrganizerID: &organizerID}, nil
		},
	}
	router := testRouter(testDeps{organizer: organizer})

	rec := doRequest(t, router, http.MethodPost, "/api/organizer/events", mintToken(t, "org1", "organizer"),
		`{"title":"Tech Conference","description":"Talks","category":"conference","location":"Hall","date":"2026-10-01T09:00:00Z","price":120,"availableTickets":300}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	event, ok := body["event"].(map[string]interface{})
	if !ok {
		t.Fatalf("event missing from response: %v", body)
	}
	if event["title"] != "Tech Conference" || event["organizerId"] != "org1" {
		t.Errorf("event = %v", event)
	}
}

func TestUpdateEventHandler(t *testing.T) {
	t.Run("foreign event maps to 403", func(t *testing.T) {
		organizer := &stubOrganizerService{
			update: func(_ context.Context, _ string, _ domain.Role, _ string, _ domain.EventPatch) (*domain.Event, error) {
				return nil, domain.ErrForbidden
			},
		}
		router := testRouter(testDeps{organizer: organizer})

		rec := doRequest(t, router, http.MethodPut, "/api/organizer/events/ev1", mintToken(t, "org2", "organizer"), `{"title":"Hijacked"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("patch passes through absent fields as nil", func(t *testing.T) {
		organizer := &stubOrganizerService{
			update: func(_ context.Context, _ string, _ domain.Role, _ string, patch domain.EventPatch) (*domain.Event, error) {
				if patch.Title == nil || *patch.Title != "New Title" {
					t.Errorf("title patch = %v", patch.Title)
				}
				if patch.Price != nil {
					t.Errorf("price should be nil, got %v", *patch.Price)
				}
				return &domain.Event{ID: "ev1", Title: *patch.Title}, nil
			},
		}
		router := testRouter(testDeps{organizer: organizer})

		rec := doRequest(t, router, http.MethodPut, "/api/organizer/events/ev1", mintToken(t, "org1", "organizer"), `{"title":"New Title"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestOrganizerStatsHandler(t *testing.T) {
	organizer := &stubOrganizerService{
		stats: func(_ context.Context, organizerID string) (*domain.OrganizerStats, error) {
			if organizerID != "org1" {
				t.Errorf("organizerID = %q", organizerID)
			}
			return &domain.OrganizerStats{TotalEvents: 4, UpcomingEvents: 2, TotalTicketsSold: 150, TotalRevenue: 3200.5}, nil
		},
	}
	router := testRouter(testDeps{organizer: organizer})

	rec := doRequest(t, router, http.MethodGet, "/api/organizer/stats", mintToken(t, "org1", "organizer"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["totalEvents"] != float64(4) || body["totalRevenue"] != 3200.5 {
		t.Errorf("body = %v", body)
	}
}

func TestListAttendeesHandler(t *testing.T) {
	organizer := &stubOrganizerService{
		attendees: func(_ context.Context, _ string, _ domain.Role, eventID string) (*domain.Event, []domain.Attendee, error) {
			return &domain.Event{ID: eventID, Title: "Summer Jazz Night"},
				[]domain.Attendee{
					{TicketID: "t1", UserName: "Jamie", UserEmail: "jamie@example.com", Status: domain.TicketActive},
					{TicketID: "t2", UserName: "Morgan", UserEmail: "morgan@example.com", Status: domain.TicketUsed},
				}, nil
		},
	}
	router := testRouter(testDeps{organizer: organizer})

	rec := doRequest(t, router, http.MethodGet, "/api/organizer/events/ev1/attendees", mintToken(t, "org1", "organizer"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2", body["total"])
	}
	event, ok := body["event"].(map[string]interface{})
	if !ok || event["title"] != "Summer Jazz Night" {
		t.Errorf("event = %v", body["event"])
	}
}
