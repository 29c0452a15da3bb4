// Package httpapi exposes the award system over HTTP/JSON with chi. Handlers
// stay thin: decode, call a service, map sentinel errors to status codes.
package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5"

	"hamawards/internal/lifecycle"
	"hamawards/internal/logging"
	"hamawards/internal/rules"
	"hamawards/internal/server/models"
	"hamawards/internal/server/services"
)

// Service interfaces consumed by the handlers. The concrete implementations
// live in the services package; tests substitute stubs.

type UserAPI interface {
	Register(ctx context.Context, callsign, password string) (*models.User, error)
	Login(ctx context.Context, callsign, password string) (string, *models.User, error)
}

type LogbookAPI interface {
	Ingest(ctx context.Context, userID int64, raw string) (*services.IngestSummary, error)
	List(ctx context.Context, userID int64) ([]*models.QSO, error)
	Stats(ctx context.Context, userID int64) (*services.LogbookStats, error)
	Purge(ctx context.Context, userID int64) (int64, error)
}

type AwardAPI interface {
	Create(ctx context.Context, p services.Principal, award *models.Award) (*models.Award, error)
	Update(ctx context.Context, p services.Principal, award *models.Award) (*models.Award, error)
	Get(ctx context.Context, p services.Principal, id int64) (*models.Award, error)
	List(ctx context.Context, p services.Principal) ([]*models.Award, error)
	ApplyLifecycle(ctx context.Context, p services.Principal, awardID int64, action lifecycle.Action, reason string) (*models.Award, error)
	Check(ctx context.Context, p services.Principal, awardID int64, includeBreakdown bool) (*rules.Verdict, error)
	Claim(ctx context.Context, p services.Principal, awardID int64) (*models.Claim, error)
	ClaimsForUser(ctx context.Context, p services.Principal) ([]*models.Claim, error)
}

type BackgroundAPI interface {
	GetPresignedPutURL(ctx context.Context) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	users       UserAPI
	logbook     LogbookAPI
	awards      AwardAPI
	backgrounds BackgroundAPI
	secretKey   string
	logger      logging.Logger
}

func NewServer(users UserAPI, logbook LogbookAPI, awards AwardAPI, backgrounds BackgroundAPI,
	secretKey string, logger logging.Logger) *Server {
	return &Server{
		users:       users,
		logbook:     logbook,
		awards:      awards,
		backgrounds: backgrounds,
		secretKey:   secretKey,
		logger:      logger.With("module", "httpapi"),
	}
}

// Routes builds the full route tree. Everything under /api except register
// and login requires a valid bearer token.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/logbook", s.handleIngest)
			r.Get("/logbook", s.handleListLog)
			r.Get("/logbook/stats", s.handleLogStats)
			r.Delete("/logbook", s.handlePurgeLog)

			r.Get("/awards", s.handleListAwards)
			r.Post("/awards", s.handleCreateAward)
			r.Get("/awards/{id}", s.handleGetAward)
			r.Put("/awards/{id}", s.handleUpdateAward)
			r.Post("/awards/{id}/lifecycle", s.handleLifecycle)
			r.Get("/awards/{id}/check", s.handleCheck)
			r.Post("/awards/{id}/claim", s.handleClaim)

			r.Get("/claims", s.handleListClaims)

			r.Post("/backgrounds/upload-url", s.handleBackgroundUploadURL)
			r.Get("/backgrounds/url", s.handleBackgroundGetURL)
		})
	})

	return r
}
