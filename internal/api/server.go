// Package api is the JSON HTTP surface of the service, built on gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Alias1177/HeartGuard/internal/assess"
	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/session"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "heartguard_session"

// Assessor runs assessments and manages their history
type Assessor interface {
	Assess(ctx context.Context, input *models.ClinicalInput) (*assess.Result, error)
	History(ctx context.Context, limit int) ([]models.AssessmentRecord, error)
	ClearHistory(ctx context.Context) (int64, error)
}

// ModelCatalog describes the loaded ensemble
type ModelCatalog interface {
	Available() []models.ModelID
	Report() registry.LoadReport
}

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the services the handlers call. Database may be nil.
type Deps struct {
	Assessor Assessor
	Models   ModelCatalog
	Sessions session.Store
	Database HealthChecker
}

// Options tune transport behaviour
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	SessionTTL     time.Duration
	PredictRate    float64
	PredictBurst   int
	RequestTimeout time.Duration
	StaticDir      string
}

// Handler serves every /api route
type Handler struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger
}

// NewRouter builds the gin engine with middleware and routes registered
func NewRouter(deps Deps, opts Options) *gin.Engine {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	h := &Handler{
		deps:   deps,
		opts:   opts,
		logger: log.With().Str("component", "api").Logger(),
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.CustomRecovery(h.recovered))
	r.Use(requestLogger(h.logger))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.RequestTimeout > 0 {
		r.Use(requestTimeout(opts.RequestTimeout))
	}
	r.Use(h.loadSession)

	limiter := rate.NewLimiter(rate.Limit(opts.PredictRate), opts.PredictBurst)
	if opts.PredictRate <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	api := r.Group("/api")
	{
		api.POST("/predict", rateLimit(limiter), h.Predict)
		api.GET("/get-content", h.GetContent)
		api.GET("/history", h.History)
		api.POST("/clear-history", h.requireSession, h.ClearHistory)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/auth-status", h.AuthStatus)
		api.GET("/health", h.Health)
		api.GET("/models", h.Models)
	}

	r.NoRoute(h.noRoute)
	r.NoMethod(h.methodNotAllowed)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
