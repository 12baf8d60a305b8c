// Package server is the composition root: it builds every dependency from
// config.Config, mounts the routes and runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	sqlite.DB ──► ListingService ──► Collection, ListingHandler, BackendHandler
//	          └─► UserDB ──► AccountAuthenticator (ACCOUNTS_ENABLED)
//	TokenService (JWT_SECRET) ──► session.Store, RequireAuth, ListingService
//	session.Store ──► session.Provider ──► SessionHandler, DialogHandler
//	Submitter (SUBMITTER) ──► metrics.InstrumentSubmitter ──► every dialog's form
//
// Everything is wired here and nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/campus-market/internal/auth"
	"github.com/sakif/campus-market/internal/config"
	"github.com/sakif/campus-market/internal/handler"
	"github.com/sakif/campus-market/internal/listing"
	"github.com/sakif/campus-market/internal/metrics"
	"github.com/sakif/campus-market/internal/middleware"
	sqliteRepo "github.com/sakif/campus-market/internal/repository/sqlite"
	"github.com/sakif/campus-market/internal/service"
	"github.com/sakif/campus-market/internal/session"
)

// httpSubmitTimeout bounds one call to a remote listing backend.
const httpSubmitTimeout = 15 * time.Second

// Server owns the database and the session store for its lifetime. One
// server is one application root: every request shares its session.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *metrics.Metrics
	store   *session.Store
	dialogs *handler.DialogHandler
}

// New builds the dependency graph. The caller must Close the server (Start
// does so on shutdown).
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the root handler, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session returns the server's session store.
func (s *Server) Session() *session.Store {
	return s.store
}

func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		var err error
		if tokens, err = auth.NewTokenService(s.config.JWTSecret); err != nil {
			return err
		}
	} else {
		s.logger.Warn("JWT_SECRET not set: sessions carry no access credential")
	}

	var authn session.Authenticator
	if s.config.AccountsEnabled {
		authn = service.NewAccountAuthenticator(s.db.Users(), auth.NewPasswordService(), s.logger)
	}
	s.store = session.NewStore(authn, tokens, s.logger)

	listings := service.NewListingService(s.db, tokens, s.logger)
	collection := handler.NewCollection(listings, s.logger)
	if err := collection.Refresh(context.Background()); err != nil {
		return fmt.Errorf("loading listing collection: %w", err)
	}

	submitter, err := s.submitter(listings)
	if err != nil {
		return err
	}

	s.dialogs = handler.NewDialogHandler(handler.DialogConfig{
		Submitter: s.metrics.InstrumentSubmitter(submitter),
		TTL:       s.config.DialogTTL,
		OnListingCreated: func(ctx context.Context) {
			_ = collection.Refresh(ctx)
		},
		OnOpen:  s.metrics.DialogsOpen.Inc,
		OnClose: s.metrics.DialogsOpen.Dec,
	}, s.logger)

	sessions := handler.NewSessionHandler(s.logger)
	listingHandler := handler.NewListingHandler(listings, collection, s.logger)
	backend := handler.NewBackendHandler(listings, s.logger)

	// === Global Middleware (order matters) ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics.HTTPRequests))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Session and dialogs reach the store through the provider scope.
		r.Group(func(r chi.Router) {
			r.Use(session.Provider(s.store))

			r.Get("/session", sessions.HandleGet)
			r.Post("/session/signup", sessions.HandleSignUp)
			r.Post("/session/signin", sessions.HandleSignIn)
			r.Post("/session/signout", sessions.HandleSignOut)
			r.Put("/session/profile", sessions.HandleUpdateProfile)

			r.Post("/dialogs", s.dialogs.HandleOpen)
			r.Get("/dialogs/{id}", s.dialogs.HandleGet)
			r.Patch("/dialogs/{id}/fields", s.dialogs.HandleEditFields)
			r.Put("/dialogs/{id}/kind", s.dialogs.HandleSetKind)
			r.Post("/dialogs/{id}/submit", s.dialogs.HandleSubmit)
			r.Post("/dialogs/{id}/cancel", s.dialogs.HandleCancel)
			r.Get("/dialogs/{id}/notifications", s.dialogs.HandleNotifications)
		})

		r.Get("/listings", listingHandler.HandleList)
		r.Get("/listings/{id}", listingHandler.HandleGet)

		if tokens != nil {
			r.With(auth.RequireAuth(tokens)).Post("/backend/listings", backend.HandleCreate)
		} else {
			r.Post("/backend/listings", backend.HandleCreate)
		}
	})

	return nil
}

// submitter picks what new dialogs submit through.
func (s *Server) submitter(listings *service.ListingService) (listing.Submitter, error) {
	switch s.config.Submitter {
	case config.SubmitterSimulated, "":
		return listing.SimulatedSubmitter{Delay: s.config.SubmitDelay}, nil
	case config.SubmitterCatalog:
		return listings, nil
	case config.SubmitterHTTP:
		return &listing.HTTPSubmitter{
			BaseURL: s.config.SubmitBackendURL,
			Client:  &http.Client{Timeout: httpSubmitTimeout},
		}, nil
	default:
		return nil, fmt.Errorf("unknown submitter %q", s.config.Submitter)
	}
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // a submit may wait on a remote backend
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
			slog.String("submitter", s.config.Submitter),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
