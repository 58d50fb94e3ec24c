package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/database/dbtest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	if user := CurrentUser(c); user != nil {
		c.String(http.StatusOK, user.Username)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func TestAuthMiddleware(t *testing.T) {
	db := dbtest.New(t)
	alice := dbtest.Fixtures{T: t, DB: db}.User("alice")
	sessions := auth.NewSessions("secret", time.Hour, false)

	r := gin.New()
	r.Use(AuthMiddleware(sessions, db))
	r.GET("/", whoami)

	token, err := sessions.Token(alice.ID, alice.Username, alice.Password)
	require.NoError(t, err)
	ghost, err := sessions.Token(9999, "ghost", "!")
	require.NoError(t, err)
	stale, err := sessions.Token(alice.ID, alice.Username, "previous-hash")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		want   string
		clears bool
	}{
		{"no cookie", "", "anonymous", false},
		{"valid", token, "alice", false},
		{"tampered", token + "x", "anonymous", true},
		{"deleted user", ghost, "anonymous", true},
		{"password changed since", stale, "anonymous", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Body.String())
			assert.Equal(t, tt.clears, len(w.Result().Cookies()) == 1)
		})
	}
}

func TestLoginRequired(t *testing.T) {
	r := gin.New()
	r.GET("/posts/create/", LoginRequired("/auth/login/"), whoami)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/create/?x=1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F%3Fx%3D1", w.Header().Get("Location"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimiterOnlyCountsPosts(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.Use(rl.Limit())
	r.Any("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
