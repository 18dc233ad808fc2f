package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, TokenExpired(signed(t, now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(signed(t, now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("opaque-token", now))
}

func serve(t *testing.T, opts Options, h http.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	Middleware(opts)(h).ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestMiddlewareDefaults(t *testing.T) {
	var got *Session
	rec := serve(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})
	require.NotNil(t, got)
	assert.Equal(t, ThemeLight, got.Theme())
	assert.False(t, got.Authenticated())
	assert.NotEmpty(t, got.BrowserID())

	sid := cookieByName(rec, BrowserCookie)
	require.NotNil(t, sid)
	assert.Equal(t, got.BrowserID(), sid.Value)
}

func TestMiddlewareReadsCookies(t *testing.T) {
	var got *Session
	rec := serve(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		got.ToggleTheme()
	},
		&http.Cookie{Name: TokenCookie, Value: "opaque"},
		&http.Cookie{Name: ThemeCookie, Value: ThemeDark},
		&http.Cookie{Name: BrowserCookie, Value: "b1"},
	)
	assert.Equal(t, "opaque", got.Token())
	assert.Equal(t, "b1", got.BrowserID())
	assert.Equal(t, ThemeLight, got.Theme())
	assert.Nil(t, cookieByName(rec, BrowserCookie))

	theme := cookieByName(rec, ThemeCookie)
	require.NotNil(t, theme)
	assert.Equal(t, ThemeLight, theme.Value)
}

func TestMiddlewareDropsExpiredToken(t *testing.T) {
	now := time.Now()
	var got *Session
	rec := serve(t, Options{Now: func() time.Time { return now }}, func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}, &http.Cookie{Name: TokenCookie, Value: signed(t, now.Add(-time.Hour))})

	assert.False(t, got.Authenticated())
	cleared := cookieByName(rec, TokenCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestGuard(t *testing.T) {
	protected := Middleware(Options{})(Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "opaque"})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSetAndClearToken(t *testing.T) {
	rec := serve(t, Options{Secure: true}, func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		s.SetToken(" new-token ")
		assert.Equal(t, "new-token", s.Token())
	})
	c := cookieByName(rec, TokenCookie)
	require.NotNil(t, c)
	assert.Equal(t, "new-token", c.Value)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
}
