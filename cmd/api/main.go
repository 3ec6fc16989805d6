package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/config"
	"github.com/vrroom/booking-bff/internal/domain/admin"
	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/catalog"
	"github.com/vrroom/booking-bff/internal/domain/submission"
	"github.com/vrroom/booking-bff/internal/domain/wizard"
	"github.com/vrroom/booking-bff/internal/middleware"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/database"
	"github.com/vrroom/booking-bff/internal/pkg/jwt"
	"github.com/vrroom/booking-bff/internal/pkg/logger"
	pkgresponse "github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/tokenstore"
)

const (
	purgeInterval = 5 * time.Minute
	adminTimeout  = 30 * time.Second
)

// app holds the wired components the router is built from.
type app struct {
	cfg      *config.Config
	hub      *booking.Hub
	tokens   tokenstore.Store
	limiter  *middleware.RateLimiter
	sessions *booking.Handler
	wizard   *wizard.Handler
	catalog  *catalog.Handler
	admin    *admin.Handler
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("backend", cfg.BackendBaseURL).
		Msg("Starting booking BFF")

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	if cfg.IsProduction() && cfg.MockFallbackEnabled {
		log.Warn().Msg("Mock backend fallback is enabled in production")
	}

	a, repo := wire(cfg, rdb)

	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), cfg.BackendTimeout)
	a.catalogService().Warmup(warmupCtx)
	cancelWarmup()

	go a.hub.Run()

	stopPurge := make(chan struct{})
	if mem, ok := repo.(*booking.MemoryRepository); ok {
		go purgeSessions(mem, stopPurge)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(stopPurge)
	a.hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// wire builds every component. rdb may be nil, in which case sessions,
// tokens and live updates stay in process memory.
func wire(cfg *config.Config, rdb *redis.Client) (*app, booking.Repository) {
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, cfg.BackendUserAgent)

	var reader backend.Reader = client
	if cfg.MockFallbackEnabled {
		reader = backend.NewFallback(client, backend.NewMock())
	}

	configProvider := catalog.NewConfigProvider(reader)
	catalogService := catalog.NewService(reader, configProvider)

	repo := booking.NewRepository(rdb, cfg.SessionTTL)
	tokens := tokenstore.New(rdb, cfg.SessionTTL)
	hub := booking.NewHub(rdb)

	bookingService := booking.NewService(repo, configProvider, catalogService, client, client, hub, cfg.DefaultLang)

	adapter := submission.NewAdapter(bookingService, client, tokens, submission.Paths{
		Calendar:   cfg.CalendarPath,
		MyBookings: cfg.MyBookingsPath,
		Login:      cfg.LoginPath,
	})
	flow := wizard.NewFlow(bookingService, adapter)

	return &app{
		cfg:      cfg,
		hub:      hub,
		tokens:   tokens,
		limiter:  middleware.NewRateLimiter(cfg.GiftCardPeekRate, cfg.GiftCardPeekBurst),
		sessions: booking.NewHandler(bookingService, hub, tokens, cfg.AllowedOrigins),
		wizard:   wizard.NewHandler(flow, bookingService),
		catalog:  catalog.NewHandler(catalogService, client),
		admin:    admin.NewHandler(admin.NewService(configProvider, reader, client), jwt.NewVerifier(cfg.AdminJWTSecret)),
	}, repo
}

func (a *app) catalogService() *catalog.Service {
	return a.catalog.Service()
}

func newRouter(a *app) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(a.cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]interface{}{
			"status":         "ok",
			"version":        "1.0.0",
			"configDegraded": a.catalogService().Config().Degraded(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		// Session routes carry the websocket endpoint, so they stay outside Compress.
		r.Mount("/sessions", a.sessions.Routes(
			middleware.SessionToken(a.tokens),
			middleware.RateLimit(a.limiter),
			a.wizard.Register,
		))

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			a.catalog.Routes(r)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Timeout(adminTimeout))
		r.Use(chimw.Compress(5))
		r.Mount("/", a.admin.Routes())
	})

	return r
}

func purgeSessions(repo *booking.MemoryRepository, stop <-chan struct{}) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := repo.Purge(); n > 0 {
				log.Debug().Int("sessions", n).Msg("Purged expired booking sessions")
			}
		}
	}
}

func setupLogger(cfg *config.Config) {
	if err := logger.Init(logger.Config{
		Level:   cfg.LogLevel,
		Console: cfg.IsDevelopment(),
		Service: "booking-bff",
	}); err != nil {
		log.Error().Err(err).Msg("Failed to configure logger")
	}
}
