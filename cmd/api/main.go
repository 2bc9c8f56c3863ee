package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/eventix/eventix/internal/clock"
	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/handlers"
	"github.com/eventix/eventix/internal/idempotency"
	"github.com/eventix/eventix/internal/mailer"
	"github.com/eventix/eventix/internal/repository"
	"github.com/eventix/eventix/internal/service"
	"github.com/eventix/eventix/migrations"
	"github.com/eventix/eventix/pkg/config"
	"github.com/eventix/eventix/pkg/database"
	"github.com/eventix/eventix/pkg/events"
	"github.com/eventix/eventix/pkg/logger"
	mw "github.com/eventix/eventix/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	idemStore, err := idempotency.NewRedisStore(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer idemStore.Close()
	if err := idemStore.Ping(ctx); err != nil {
		logger.Error("Failed to reach redis", "error", err)
		os.Exit(1)
	}

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromAddress)
	}

	clk := clock.NewSystem()

	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	authService := service.NewAuthService(userRepo, eventBus, cfg)
	userService := service.NewUserService(userRepo, eventBus)
	eventService := service.NewEventService(eventRepo, clk)
	ticketService := service.NewTicketService(ticketRepo, eventRepo, userRepo, eventBus, mail, clk)
	validationService := service.NewValidationService(ticketRepo, userRepo, eventBus, clk)
	organizerService := service.NewOrganizerService(eventRepo, ticketRepo, userRepo, eventBus, clk)

	h := handlers.New(authService, userService, eventService, ticketService, validationService, organizerService, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

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
			r.With(mw.Idempotency(idemStore)).Post("/purchase", h.PurchaseTicket)
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

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
