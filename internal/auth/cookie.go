package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SetTokenCookie stores the session token in an HTTP-only cookie.
func SetTokenCookie(c *gin.Context, cfg CookieConfig, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, token, int(ttl.Seconds()), "/", "", cfg.Secure, true)
}

// ClearTokenCookie expires the session cookie in the browser.
func ClearTokenCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, "", -1, "/", "", cfg.Secure, true)
}
