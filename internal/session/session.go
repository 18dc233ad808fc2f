// Package session holds the per-browser state that the UI keeps between
// requests: the API session token, the theme preference and a browser id.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/phillip-england/employeems/internal/notify"
)

const (
	TokenCookie   = "EMS_token"
	ThemeCookie   = "theme"
	BrowserCookie = "ems_sid"

	ThemeLight = "light"
	ThemeDark  = "dark"

	LoginPath = "/login"
)

const oneYear = 365 * 24 * time.Hour

type ctxKey struct{}

// Session is created once per request by Middleware. Reads come from the
// request cookies; writes are sent back as Set-Cookie headers.
type Session struct {
	w         http.ResponseWriter
	secure    bool
	token     string
	theme     string
	browserID string
}

func (s *Session) Token() string { return s.token }

func (s *Session) Authenticated() bool { return s.token != "" }

func (s *Session) SetToken(token string) {
	s.token = strings.TrimSpace(token)
	s.setCookie(TokenCookie, s.token, oneYear)
}

func (s *Session) ClearToken() {
	s.token = ""
	s.setCookie(TokenCookie, "", -1)
}

func (s *Session) Theme() string { return s.theme }

func (s *Session) Dark() bool { return s.theme == ThemeDark }

func (s *Session) ToggleTheme() string {
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	s.setCookie(ThemeCookie, s.theme, oneYear)
	return s.theme
}

// BrowserID identifies this browser for server-side drafts.
func (s *Session) BrowserID() string { return s.browserID }

func (s *Session) setCookie(name, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(1, 0)
	} else {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	http.SetCookie(s.w, cookie)
}

func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok {
		return nil
	}
	return s
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

type Options struct {
	Secure bool
	Logger logrus.FieldLogger
	Now    func() time.Time
}

// Middleware loads the Session from cookies. Tokens that are recognisably
// expired JWTs are dropped here without asking the API.
func Middleware(opts Options) func(http.Handler) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := &Session{w: w, secure: opts.Secure, theme: ThemeLight}
			if c, err := r.Cookie(TokenCookie); err == nil {
				s.token = strings.TrimSpace(c.Value)
			}
			if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == ThemeDark {
				s.theme = ThemeDark
			}
			if c, err := r.Cookie(BrowserCookie); err == nil && c.Value != "" {
				s.browserID = c.Value
			} else {
				s.browserID = uuid.NewString()
				s.setCookie(BrowserCookie, s.browserID, oneYear)
			}
			if s.token != "" && TokenExpired(s.token, now()) {
				if opts.Logger != nil {
					opts.Logger.Debug("dropping expired session token")
				}
				s.ClearToken()
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// Guard sends visitors without a token to the login page.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if s == nil || !s.Authenticated() {
			notify.Push(w, notify.Errorf("Please login first"))
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired; the API decides for them.
func TokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
