// Package apistub is an in-memory stand-in for the employee API. It speaks
// the same envelope contract as the production service so the client can be
// developed and tested without one.
package apistub

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/config"
	"github.com/phillip-england/employeems/internal/middleware"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"

	avatarSize = 256
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Role    string `json:"role,omitempty"`
	Token   string `json:"token,omitempty"`
}

type Options struct {
	Logger        logrus.FieldLogger
	TokenTTL      time.Duration
	MaxUploadSize int64
	// OnResetCode receives every issued reset code. The default logs it.
	OnResetCode func(email, code string)
}

type Server struct {
	store       *memoryStore
	secret      []byte
	tokenTTL    time.Duration
	maxUpload   int64
	logger      logrus.FieldLogger
	onResetCode func(email, code string)
}

func New(opts Options) (*Server, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, "generate signing key")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 5 << 20
	}
	s := &Server{
		store:       newMemoryStore(),
		secret:      secret,
		tokenTTL:    opts.TokenTTL,
		maxUpload:   opts.MaxUploadSize,
		logger:      opts.Logger,
		onResetCode: opts.OnResetCode,
	}
	if s.onResetCode == nil {
		s.onResetCode = func(email, code string) {
			s.logger.WithFields(logrus.Fields{"email": email, "code": code}).Info("password reset code issued")
		}
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, s.requireUser)
	}

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/uploads/{id}", s.upload).Methods(http.MethodGet)

	r.HandleFunc("/user/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/user/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/user/forgot-password", s.forgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/user/reset-password", s.resetPassword).Methods(http.MethodPost)
	r.Handle("/user/check", authed(s.check)).Methods(http.MethodGet)
	r.Handle("/user/profile", authed(s.profile)).Methods(http.MethodGet)
	r.Handle("/user/profile", authed(s.updateProfile)).Methods(http.MethodPut)
	r.Handle("/user/logout", authed(s.logout)).Methods(http.MethodGet)

	r.Handle("/employee", authed(s.listEmployees)).Methods(http.MethodGet)
	r.Handle("/employee/search", authed(s.searchEmployees)).Methods(http.MethodGet)
	r.Handle("/employee/home_stats", authed(s.homeStats)).Methods(http.MethodGet)
	r.Handle("/employee/create", authed(s.createEmployee)).Methods(http.MethodPost)
	r.Handle("/employee/update", authed(s.updateEmployee)).Methods(http.MethodPut)
	r.Handle("/employee/{id}", authed(s.getEmployee)).Methods(http.MethodGet)
	r.Handle("/employee/{id}", authed(s.deleteEmployee)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// SetRole changes the role of the account registered under email.
func (s *Server) SetRole(email, role string) bool {
	u, ok := s.store.userByEmail(email)
	if !ok {
		return false
	}
	u.Role = role
	return s.store.updateUser(u)
}

// Run serves the stub until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Configuration) error {
	logger := cfg.Logger()
	s, err := New(Options{Logger: logger, MaxUploadSize: cfg.MaxUploadSize})
	if err != nil {
		return err
	}
	if cfg.Stub.Seed {
		if err := s.Seed(cfg.Stub.AdminEmail, cfg.Stub.AdminPassword); err != nil {
			return errors.Wrap(err, "seed stub data")
		}
	}

	handler := middleware.Chain(
		s.Handler(),
		middleware.WithLogger(logger, cfg.RequestIDHeader),
		middleware.Recover,
	)
	httpServer := &http.Server{
		Addr:              cfg.StubAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("api stub listening on http://localhost%s", cfg.StubAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: "ok"})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.store.getUpload(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", u.contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(u.data)
}

type userKey struct{}

func currentUser(ctx context.Context) user {
	u, _ := ctx.Value(userKey{}).(user)
	return u
}

type tokenKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || s.store.isRevoked(token) {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := s.parseToken(token)
		if err != nil {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		u, found := s.store.userByID(userID)
		if !found {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, u)
		ctx = context.WithValue(ctx, tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) issueToken(u user) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}
	return claims.Subject, nil
}

// storeAvatar crops an uploaded "avatar" part and returns its public URL.
// An absent part yields an empty URL.
func (s *Server) storeAvatar(r *http.Request) (string, error) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errors.Wrap(err, "read avatar")
	}
	defer file.Close()
	pending, err := avatar.Read(file, header.Filename, s.maxUpload)
	if err != nil {
		return "", err
	}
	data, err := avatar.Square(pending, avatarSize)
	if err != nil {
		return "", err
	}
	id := s.store.putUpload("image/png", data)
	return publicBase(r) + "/uploads/" + id, nil
}

func publicBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}

func (s *Server) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(s.maxUpload + 1<<20)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: statusFail, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: statusError, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
