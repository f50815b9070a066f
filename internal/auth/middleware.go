package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
)

// ErrUnknownSubject is returned by a SubjectFunc when the token's user no longer exists.
var ErrUnknownSubject = errors.New("session subject not found")

// SubjectFunc resolves the user behind a token subject and returns its email.
// It returns ErrUnknownSubject when the user no longer exists; any other error is a store fault.
type SubjectFunc func(ctx context.Context, userID string) (string, error)

// Authenticator checks session tokens on protected routes.
type Authenticator struct {
	jwt      *JWTManager
	cookie   CookieConfig
	revoked  RevocationStore
	resolver SubjectFunc
}

// NewAuthenticator creates an Authenticator. revoked and resolver may be nil.
func NewAuthenticator(jwtManager *JWTManager, cookie CookieConfig, revoked RevocationStore, resolver SubjectFunc) *Authenticator {
	return &Authenticator{
		jwt:      jwtManager,
		cookie:   cookie,
		revoked:  revoked,
		resolver: resolver,
	}
}

// tokenFrom reads the session cookie, falling back to Authorization: Bearer <token>.
func (a *Authenticator) tokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(a.cookie.Name); err == nil && v != "" {
		return v
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Required is a Gin middleware that rejects requests without a valid session.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := a.tokenFrom(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := a.jwt.ParseAndValidate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ctx := c.Request.Context()
		log := zerolog.Ctx(ctx)

		if a.revoked != nil {
			revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
			if err != nil {
				log.Error().Err(err).Msg("revocation lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session has ended"})
				return
			}
		}

		email := claims.Email
		if a.resolver != nil {
			email, err = a.resolver(ctx, claims.Subject)
			switch {
			case errors.Is(err, ErrUnknownSubject):
				log.Debug().Str("user_id", claims.Subject).Msg("session subject rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			case err != nil:
				response.Error(c, fmt.Errorf("resolve session subject: %w", err))
				c.Abort()
				return
			}
		}

		SetSession(c, &Session{
			UserID:    claims.Subject,
			Email:     email,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		})

		c.Next()
	}
}

// Optional attaches a session when a valid token is present but never rejects.
// Logout uses it so that clearing the cookie always succeeds.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := a.tokenFrom(c); tokenStr != "" {
			if claims, err := a.jwt.ParseAndValidate(tokenStr); err == nil {
				SetSession(c, &Session{
					UserID:    claims.Subject,
					Email:     claims.Email,
					TokenID:   claims.ID,
					ExpiresAt: claims.ExpiresAt.Time,
				})
			}
		}
		c.Next()
	}
}
