package app

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/api"
	"github.com/nekogravitycat/party-booking-backend/internal/auth"
	"github.com/nekogravitycat/party-booking-backend/internal/config"
	"github.com/nekogravitycat/party-booking-backend/internal/metrics"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/user"
)

// Deps holds the external resources the application is built on.
type Deps struct {
	Config *config.Config
	DBPool *pgxpool.Pool
	Redis  *redis.Client // optional
	Logger zerolog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	UserService user.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(deps Deps) *Container {
	cfg := deps.Config

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	cookie := auth.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure || cfg.IsProduction}

	var revocations auth.RevocationStore
	if deps.Redis != nil {
		revocations = auth.NewRedisRevocationStore(deps.Redis, "party:revoked:")
	} else {
		revocations = auth.NewMemoryRevocationStore()
	}

	var (
		registry *prometheus.Registry
		m        *metrics.Metrics
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		m = metrics.New(registry)
	}

	// User Module
	userRepo := user.NewPgxRepository(deps.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	resolver := func(ctx context.Context, userID string) (string, error) {
		u, err := userService.GetByID(ctx, userID)
		if errors.Is(err, user.ErrNotFound) {
			return "", auth.ErrUnknownSubject
		}
		if err != nil {
			return "", err
		}
		return u.Email, nil
	}
	authenticator := auth.NewAuthenticator(jwtManager, cookie, revocations, resolver)

	// Login throttling only applies in production so local development is not locked out.
	var loginLimiter *auth.IPRateLimiter
	if cfg.IsProduction && cfg.AuthRateLimit > 0 {
		loginLimiter = auth.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	// Party Module
	partyRepo := party.NewPgxRepository(deps.DBPool)
	partyService := party.NewService(partyRepo, party.Options{
		EnforceOwnership: cfg.EnforceOwnership,
		MaxRangeDays:     cfg.MaxRangeDays,
	}, m)

	checks := map[string]api.Pinger{"database": deps.DBPool}
	if deps.Redis != nil {
		checks["redis"] = api.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	// API Router Config
	routerParams := api.Config{
		IsProduction:   cfg.IsProduction,
		ClientOrigin:   cfg.ClientOrigin,
		TrustedProxies: cfg.TrustedProxies,
		Location:       loc,
		Logger:         deps.Logger,
		UserService:    userService,
		PartyService:   partyService,
		JWTManager:     jwtManager,
		Cookie:         cookie,
		Revocations:    revocations,
		LoginLimiter:   loginLimiter,
		Authenticator:  authenticator,
		Metrics:        m,
		Checks:         checks,
	}
	if registry != nil {
		routerParams.Gatherer = registry
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:      router,
		UserService: userService,
	}
}
