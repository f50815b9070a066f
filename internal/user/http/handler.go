package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/auth"
	"github.com/nekogravitycat/party-booking-backend/internal/metrics"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/party-booking-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
	cookie      auth.CookieConfig
	revoked     auth.RevocationStore
	metrics     *metrics.Metrics
}

func NewHandler(
	userService user.Service,
	jwtManager *auth.JWTManager,
	cookie auth.CookieConfig,
	revoked auth.RevocationStore,
	m *metrics.Metrics,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
		cookie:      cookie,
		revoked:     revoked,
		metrics:     m,
	}
}

// Login authenticates a user using email and password.
// On success, the session token is set as an HTTP-only cookie and the profile is returned.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	ctx := c.Request.Context()
	log := zerolog.Ctx(ctx)

	u, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrNotFound):
			h.metrics.IncLogin("invalid")
			log.Info().Str("email", req.Email).Msg("login rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			h.metrics.IncLogin("error")
			response.Error(c, err)
		}
		return
	}

	token, _, err := h.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		h.metrics.IncLogin("error")
		response.Error(c, err)
		return
	}

	auth.SetTokenCookie(c, h.cookie, token, h.jwtManager.TTL())
	h.metrics.IncLogin("success")
	log.Info().Str("user_id", u.ID).Msg("login successful")

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// Logout ends the current session: the token is revoked and the cookie cleared.
// It succeeds even without a valid session.
func (h *UserHandler) Logout(c *gin.Context) {
	if s, ok := auth.GetSession(c); ok && h.revoked != nil {
		if err := h.revoked.Revoke(c.Request.Context(), s.TokenID, s.ExpiresAt); err != nil {
			response.Error(c, err)
			return
		}
	}

	auth.ClearTokenCookie(c, h.cookie)
	c.JSON(http.StatusOK, response.MessageResponse{Message: "logged out successfully"})
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}
