package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventix/eventix/internal/domain"
)

// ListMyTickets handles listing the authenticated user's tickets
func (h *Handlers) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var statusPtr *domain.TicketStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseTicketStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid status parameter")
			return
		}
		statusPtr = &status
	}

	limit, offset := parsePagination(r)

	tickets, total, err := h.ticketService.ListUserTickets(r.Context(), claims.Sub, statusPtr, limit, offset)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pageEnvelope("tickets", tickets, total, limit, offset))
}

// GetMyTicket handles fetching a single owned ticket
func (h *Handlers) GetMyTicket(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), chi.URLParam(r, "id"), claims.Sub)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// PurchaseTicket handles ticket purchase for the authenticated user
func (h *Handlers) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	ticket, err := h.ticketService.Purchase(r.Context(), claims.Sub, &req)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Ticket purchased successfully",
		"ticket":  ticket,
	})
}

// ActivateTicket handles the pending -> active transition
func (h *Handlers) ActivateTicket(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ticket, err := h.ticketService.Activate(r.Context(), chi.URLParam(r, "id"), claims.Sub)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Ticket activated successfully",
		"ticket":  ticket,
	})
}

// CancelTicket handles cancellation; the ticket is removed and one unit
// returns to the event's availability
func (h *Handlers) CancelTicket(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.ticketService.Cancel(r.Context(), chi.URLParam(r, "id"), claims.Sub); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Ticket cancelled successfully"})
}
