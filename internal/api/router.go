package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/auth"
	calHttp "github.com/nekogravitycat/party-booking-backend/internal/calendar/http"
	"github.com/nekogravitycat/party-booking-backend/internal/export"
	"github.com/nekogravitycat/party-booking-backend/internal/metrics"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	partyHttp "github.com/nekogravitycat/party-booking-backend/internal/party/http"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/party-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/party-booking-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ClientOrigin string
	Location     *time.Location
	Logger       zerolog.Logger

	// TrustedProxies may set X-Forwarded-For. Nil trusts none.
	TrustedProxies []string

	UserService   user.Service
	PartyService  party.Service
	JWTManager    *auth.JWTManager
	Cookie        auth.CookieConfig
	Revocations   auth.RevocationStore
	LoginLimiter  *auth.IPRateLimiter
	Authenticator *auth.Authenticator

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Checks   map[string]Pinger
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (logging, recovery, CORS, metrics) and registering routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	request.RegisterValidators()

	r := gin.New()

	// ClientIP feeds the login limiter, so forwarded headers count only from known proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.Error().Err(err).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware:
	// - RequestLogger: puts the logger on the request context and logs each request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), Recovery())

	// The browser client sends the session cookie, so credentials must be allowed
	// and the origin must be explicit.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.ClientOrigin}
	corsCfg.AllowCredentials = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(corsCfg))

	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		if cfg.Gatherer != nil {
			r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
		}
	}

	authMiddleware := cfg.Authenticator.Required()
	optionalAuth := cfg.Authenticator.Optional()

	loginLimiter := func(c *gin.Context) { c.Next() }
	if cfg.LoginLimiter != nil {
		cfg.LoginLimiter.OnLimited(func() { cfg.Metrics.IncLogin("limited") })
		loginLimiter = cfg.LoginLimiter.Middleware()
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, cfg.Cookie, cfg.Revocations, cfg.Metrics)
	partyHandler := partyHttp.NewHandler(cfg.PartyService, export.New(cfg.Location))
	calHandler := calHttp.NewHandler(cfg.PartyService, cfg.Location)
	health := &healthHandler{checks: cfg.Checks, now: time.Now}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", health.Health)
		apiGroup.GET("/health/ready", health.Ready)

		userHttp.RegisterRoutes(apiGroup, userHandler, authMiddleware, optionalAuth, loginLimiter)
		partyHttp.RegisterRoutes(apiGroup, partyHandler, authMiddleware)
		calHttp.RegisterRoutes(apiGroup, calHandler, authMiddleware)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}
