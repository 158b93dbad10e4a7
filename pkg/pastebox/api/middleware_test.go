package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

func sessionCookie(t *testing.T, secret string) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, SetSessionCookie(rec, secret))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetSessionCookie(t *testing.T) {
	cookie := sessionCookie(t, testSecret)

	assert.Equal(t, sessionCookieName, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRequireSession(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := RequireSession(testSecret)(next)

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.AddCookie(sessionCookie(t, testSecret))

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("cookie signed with different secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.AddCookie(sessionCookie(t, "some-other-secret"))

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		cookie := sessionCookie(t, testSecret)
		cookie.Value += "x"

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.AddCookie(cookie)

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage cookie value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-jwt"})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
