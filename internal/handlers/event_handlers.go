package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventix/eventix/internal/domain"
)

// ListEvents handles the public event catalog with optional filters
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := domain.EventFilter{
		Category:     r.URL.Query().Get("category"),
		Search:       r.URL.Query().Get("search"),
		UpcomingOnly: r.URL.Query().Get("upcoming") == "true",
	}
	limit, offset := parsePagination(r)

	events, total, err := h.eventService.ListEvents(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pageEnvelope("events", events, total, limit, offset))
}

// GetEvent handles fetching a single public event
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// ListCategories returns the distinct event categories
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.eventService.Categories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
