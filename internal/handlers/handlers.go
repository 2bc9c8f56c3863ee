package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/service"
	"github.com/eventix/eventix/pkg/auth"
	"github.com/eventix/eventix/pkg/config"
	"github.com/eventix/eventix/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService       service.AuthService
	userService       service.UserService
	eventService      service.EventService
	ticketService     service.TicketService
	validationService service.ValidationService
	organizerService  service.OrganizerService
	config            *config.Config
}

func New(
	authService service.AuthService,
	userService service.UserService,
	eventService service.EventService,
	ticketService service.TicketService,
	validationService service.ValidationService,
	organizerService service.OrganizerService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:       authService,
		userService:       userService,
		eventService:      eventService,
		ticketService:     ticketService,
		validationService: validationService,
		organizerService:  organizerService,
		config:            cfg,
	}
}

// RequireJWT authenticates the bearer token. With a non-empty role the
// caller must hold that role; admins pass every role gate.
func (h *Handlers) RequireJWT(requiredRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			role, ok := domain.ParseRole(claims.Role)
			if !ok {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			switch requiredRole {
			case "":
			case domain.RoleOrganizer:
				if !role.CanManageEvents() {
					writeError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			default:
				if role != requiredRole && role != domain.RoleAdmin {
					writeError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// respondError maps domain sentinels to status codes; anything else gets
// the fallback. Internal failures are logged and never leak details.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrSoldOut),
		errors.Is(err, domain.ErrEventEnded),
		errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		if fallback >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
			writeError(w, fallback, "Internal server error")
			return
		}
		writeError(w, fallback, err.Error())
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	page := 1

	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	return limit, (page - 1) * limit
}

// pageEnvelope is the list response shape shared by event and ticket
// listings: items plus total/pages/current_page.
func pageEnvelope(key string, items interface{}, total, limit, offset int) map[string]interface{} {
	pages := (total + limit - 1) / limit
	return map[string]interface{}{
		key:            items,
		"total":        total,
		"pages":        pages,
		"current_page": offset/limit + 1,
	}
}
