package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventix/eventix/internal/domain"
)

// ListOrganizerEvents handles listing the organizer's own events
func (h *Handlers) ListOrganizerEvents(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, offset := parsePagination(r)

	events, total, err := h.organizerService.ListEvents(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pageEnvelope("events", events, total, limit, offset))
}

// CreateEvent handles new event creation by an organizer
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	event, err := h.organizerService.CreateEvent(r.Context(), claims.Sub, &req)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Event created successfully",
		"event":   event,
	})
}

// UpdateEvent handles partial updates; absent fields stay unchanged
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var patch domain.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	event, err := h.organizerService.UpdateEvent(r.Context(), claims.Sub, domain.Role(claims.Role), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Event updated successfully",
		"event":   event,
	})
}

// DeleteEvent handles event removal
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.organizerService.DeleteEvent(r.Context(), claims.Sub, domain.Role(claims.Role), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// ListAttendees handles the per-event ticket holder listing
func (h *Handlers) ListAttendees(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	event, attendees, err := h.organizerService.Attendees(r.Context(), claims.Sub, domain.Role(claims.Role), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event": map[string]interface{}{
			"id":    event.ID,
			"title": event.Title,
			"date":  event.Date,
		},
		"attendees": attendees,
		"total":     len(attendees),
	})
}

// ValidateTicket handles door-side QR validation
func (h *Handlers) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRCode string `json:"qrCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QRCode == "" {
		writeError(w, http.StatusBadRequest, "QR code is required")
		return
	}

	result, err := h.validationService.Validate(r.Context(), req.QRCode)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	// All classified outcomes answer 200; only an unknown code is a 404.
	status := http.StatusOK
	if result.Reason == domain.ValidationNotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, result)
}

// OrganizerStats handles the aggregate counters for the organizer's events
func (h *Handlers) OrganizerStats(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.organizerService.Stats(r.Context(), claims.Sub)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
