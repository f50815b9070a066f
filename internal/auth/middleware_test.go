package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(a *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", a.Required(), func(c *gin.Context) {
		s, _ := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"user": s.UserID, "email": s.Email})
	})
	return r
}

func doGet(r *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequiredAcceptsCookieAndBearer(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	cookie := CookieConfig{Name: "party_zala_token"}
	r := newProtectedRouter(NewAuthenticator(m, cookie, nil, nil))

	token, _, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	w := doGet(r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")

	w = doGet(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiredRejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	cookie := CookieConfig{Name: "party_zala_token"}
	revoked := NewMemoryRevocationStore()
	resolver := func(_ context.Context, id string) (string, error) {
		switch id {
		case "ghost":
			return "", ErrUnknownSubject
		case "unreachable":
			return "", errors.New("dial tcp 127.0.0.1:5432: connection refused")
		}
		return "fresh@b.com", nil
	}
	r := newProtectedRouter(NewAuthenticator(m, cookie, revoked, resolver))

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, nil).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doGet(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "not-a-jwt"})
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		token, claims, err := m.GenerateAccessToken("user-1", "a@b.com")
		require.NoError(t, err)
		require.NoError(t, revoked.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

		w := doGet(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		token, _, err := m.GenerateAccessToken("ghost", "ghost@b.com")
		require.NoError(t, err)

		w := doGet(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store fault is a server error", func(t *testing.T) {
		token, _, err := m.GenerateAccessToken("unreachable", "a@b.com")
		require.NoError(t, err)

		w := doGet(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	})

	t.Run("resolver refreshes email", func(t *testing.T) {
		token, _, err := m.GenerateAccessToken("user-2", "stale@b.com")
		require.NoError(t, err)

		w := doGet(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fresh@b.com")
	})
}
