package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)

	token, err := s.Token(42, "alice", "hash")
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, s.Matches(claims, "hash"))
	assert.NotContains(t, claims.Fingerprint, "hash")
}

func TestMatchesPasswordHash(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)
	token, err := s.Token(1, "alice", "old-hash")
	require.NoError(t, err)
	claims, err := s.Parse(token)
	require.NoError(t, err)

	assert.True(t, s.Matches(claims, "old-hash"))
	assert.False(t, s.Matches(claims, "new-hash"))
	assert.False(t, NewSessions("other", time.Hour, false).Matches(claims, "old-hash"))
	assert.False(t, s.Matches(&Claims{UserID: 1}, "old-hash"))
}

func TestParseRejects(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)
	token, err := s.Token(1, "alice", "hash")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewSessions("other", time.Hour, false).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewSessions("secret", time.Hour, false)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLoginLogoutCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewSessions("secret", time.Hour, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login/", nil)
	require.NoError(t, s.Login(c, 7, "bob", "hash"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	claims, err := s.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout/", nil)
	s.Logout(c)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "anything"))
}
