package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginSetsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": testUsername,
		"password": testPassword,
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeData[sessionResponse](t, rec)
	assert.Equal(t, testUsername, res.User.Username)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, res.Token, rec.Header().Get(auth.RefreshHeader))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, res.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, rec.Body.String(), "password")

	// the cookie alone authenticates and the response carries a refreshed token
	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(auth.RefreshHeader))
	assert.NotNil(t, sessionCookie(rec))
	session := decodeData[sessionResponse](t, rec)
	assert.Equal(t, testUsername, session.User.Username)
	assert.Empty(t, session.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	cases := map[string]map[string]string{
		"wrong password": {"username": testUsername, "password": "nope"},
		"unknown user":   {"username": "ghost", "password": testPassword},
		"empty password": {"username": testUsername, "password": ""},
		"empty body":     {},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", body))

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, sessionCookie(rec))
			assert.Empty(t, rec.Header().Get(auth.RefreshHeader))
		})
	}
}

func TestLoginWithForm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/api/auth/login", map[string][]string{
		"username": {testUsername},
		"password": {testPassword},
	}, nil))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) { s.LoginRatePerMinute = 2 })

	for i := 0; i < 2; i++ {
		rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "x", "password": "y"}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": testUsername,
		"password": testPassword,
	}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginRateLimitIgnoresForwardedHeaders(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) { s.LoginRatePerMinute = 2 })

	limited := 0
	for i := 0; i < 10; i++ {
		req := jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "x", "password": "y"})
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		if env.do(req).Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 8, limited)
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) {
		s.LoginRatePerMinute = 1
		s.TrustedProxy = true
	})

	login := func(forwardedFor string) int {
		req := jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "x", "password": "y"})
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return env.do(req).Code
	}

	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.2"))
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := auth.NewSessions("some-other-secret", env.settings.SessionIdle, env.settings.SessionMaxAge)
	require.NoError(t, err)
	forged, err := other.Issue(env.users[testUsername].ID, testUsername, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+forged.Token)
	rec = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
