package auth

import (
	"time"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Session describes the authenticated caller of the current request.
// It lives for one request and is derived from the session cookie.
type Session struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// SetSession attaches s to the request context.
func SetSession(c *gin.Context, s *Session) {
	c.Set(sessionKey, s)
}

// GetSession returns the authenticated session, if any.
func GetSession(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if s, ok := GetSession(c); ok {
		return s.UserID
	}
	return ""
}
