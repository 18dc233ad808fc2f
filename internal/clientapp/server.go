// Package clientapp serves the EmployeeMS pages. Every data operation is
// forwarded to the employee API; the only state kept here lives in cookies
// and the draft store.
package clientapp

import (
	"context"
	"net/http"
	"time"

	"github.com/benbjohnson/hashfs"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/config"
	"github.com/phillip-england/employeems/internal/drafts"
	"github.com/phillip-england/employeems/internal/middleware"
	"github.com/phillip-england/employeems/internal/security"
	"github.com/phillip-england/employeems/internal/session"
)

// Options override the collaborators New would otherwise build from config.
type Options struct {
	API            *apiclient.Client
	Drafts         *drafts.Store
	RateLimitStore limiter.Store
	Registry       *prometheus.Registry
	Now            func() time.Time
}

type Server struct {
	cfg          *config.Configuration
	logger       *logrus.Logger
	api          *apiclient.Client
	drafts       *drafts.Store
	limiterStore limiter.Store
	registry     *prometheus.Registry
	assets       *hashfs.FS
	pages        map[string]*templateSet
	now          func() time.Time
}

func New(cfg *config.Configuration, opts Options) (*Server, error) {
	s := &Server{
		cfg:          cfg,
		logger:       cfg.Logger(),
		api:          opts.API,
		drafts:       opts.Drafts,
		limiterStore: opts.RateLimitStore,
		registry:     opts.Registry,
		now:          opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.registry == nil && cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if s.api == nil {
		clientOpts := []apiclient.Option{apiclient.WithTimeout(cfg.APITimeout)}
		if s.registry != nil {
			clientOpts = append(clientOpts, apiclient.WithMetrics(apiclient.NewMetrics(s.registry)))
		}
		s.api = apiclient.New(cfg.APIBaseURL, clientOpts...)
	}
	if s.drafts == nil {
		s.drafts = drafts.New(drafts.NewMemoryBackend(), cfg.DraftTTL)
	}
	if s.limiterStore == nil {
		s.limiterStore = middleware.NewMemoryStore()
	}

	assets, err := newAssets()
	if err != nil {
		return nil, err
	}
	s.assets = assets
	pages, err := parsePages(assets)
	if err != nil {
		return nil, err
	}
	s.pages = pages
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	guard := func(h http.HandlerFunc) http.Handler { return session.Guard(h) }
	limited := func(h http.HandlerFunc) http.Handler { return h }
	if s.cfg.RateLimit.Enabled {
		rl := middleware.RateLimit(middleware.RateLimitConfig{
			Limit:  s.cfg.RateLimit.Limit,
			Period: s.cfg.RateLimit.Period,
			Store:  s.limiterStore,
		})
		limited = func(h http.HandlerFunc) http.Handler {
			return middleware.Chain(h, middleware.OnlyMethods(rl, http.MethodPost))
		}
	}

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.registry != nil {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", hashfs.FileServer(s.assets)))

	r.Handle("/", guard(s.homePage)).Methods(http.MethodGet)

	r.Handle("/employees", guard(s.employeesPage)).Methods(http.MethodGet)
	r.Handle("/employees/export.xlsx", guard(s.exportEmployees)).Methods(http.MethodGet)
	r.Handle("/employees/import", guard(s.importEmployees)).Methods(http.MethodPost)
	r.Handle("/employees/new", guard(s.newEmployeePage)).Methods(http.MethodGet)
	r.Handle("/employees/new", guard(s.createEmployee)).Methods(http.MethodPost)
	r.Handle("/employees/{id}", guard(s.employeePage)).Methods(http.MethodGet)
	r.Handle("/employees/{id}", guard(s.saveEmployee)).Methods(http.MethodPost)
	r.Handle("/employees/{id}/cancel", guard(s.cancelEdit)).Methods(http.MethodPost)
	r.Handle("/employees/{id}/avatar", guard(s.selectAvatar)).Methods(http.MethodPost)
	r.Handle("/employees/{id}/delete", guard(s.deleteEmployee)).Methods(http.MethodPost)

	r.HandleFunc("/login", s.loginPage).Methods(http.MethodGet)
	r.Handle("/login", limited(s.login)).Methods(http.MethodPost)
	r.HandleFunc("/register", s.registerPage).Methods(http.MethodGet)
	r.Handle("/register", limited(s.register)).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", s.forgotPasswordPage).Methods(http.MethodGet)
	r.Handle("/forgot-password", limited(s.forgotPassword)).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.resetPasswordPage).Methods(http.MethodGet)
	r.Handle("/reset-password", limited(s.resetPassword)).Methods(http.MethodPost)

	r.Handle("/profile", guard(s.profilePage)).Methods(http.MethodGet)
	r.Handle("/profile/edit", guard(s.editProfilePage)).Methods(http.MethodGet)
	r.Handle("/profile/edit", guard(s.updateProfile)).Methods(http.MethodPost)
	r.Handle("/logout", guard(s.logout)).Methods(http.MethodPost)
	r.HandleFunc("/theme", s.toggleTheme).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)

	return middleware.Chain(
		r,
		middleware.WithLogger(s.logger, s.cfg.RequestIDHeader),
		middleware.Recover,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: middleware.DefaultCSP}),
		middleware.Compress,
		session.Middleware(session.Options{Secure: s.cfg.CookieSecure, Logger: s.logger, Now: s.now}),
		security.VerifyCSRF(s.cfg.CookieSecure),
	)
}

// Run serves the UI until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Configuration) error {
	logger := cfg.Logger()
	opts := Options{}

	if cfg.UsesRedis() {
		client, err := drafts.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func(client *redis.Client) {
			if err := client.Close(); err != nil {
				logger.WithError(err).Warn("close redis")
			}
		}(client)
		if cfg.DraftStore == config.DraftStoreRedis {
			opts.Drafts = drafts.New(drafts.NewRedisBackend(client), cfg.DraftTTL)
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.Storage == "redis" {
			store, err := middleware.NewRedisStore(client)
			if err != nil {
				return err
			}
			opts.RateLimitStore = store
		}
	}

	s, err := New(cfg, opts)
	if err != nil {
		return errors.Wrap(err, "build client")
	}

	httpServer := &http.Server{
		Addr:              cfg.ClientAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("client listening on http://localhost%s (api %s)", cfg.ClientAddr, cfg.APIBaseURL)
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
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
