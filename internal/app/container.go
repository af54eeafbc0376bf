package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/delphi-enrich-web/internal/config"
	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/enrichment"
	"github.com/kapu/delphi-enrich-web/internal/flow"
	"github.com/kapu/delphi-enrich-web/internal/session"
	"github.com/kapu/delphi-enrich-web/internal/util"
	"github.com/kapu/delphi-enrich-web/internal/web"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Container bundles the assembled runtime: the HTTP server and the session
// manager whose janitor runs beside it.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Server   *web.Server
	Sessions *session.Manager

	closers []func()
}

// Options lets callers swap collaborators that have no configuration key.
type Options struct {
	Sink flow.ConfirmationSink
}

// Build assembles every service. Anything opened before a failure is closed
// again before Build returns.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Enrichment service client
	var breaker *util.CircuitBreaker
	if cfg.Enrichment.BreakerEnabled {
		breaker = util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		)
	}
	client := enrichment.NewClient(cfg.Enrichment.BaseURL, cfg.Enrichment.Timeout, breaker, logger)

	// Session storage
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() {
		_ = store.Close()
	})

	sink := opts.Sink
	if sink == nil {
		sink = flow.NewLogSink(logger)
	}

	sessions := session.NewManager(
		store,
		func(jar http.CookieJar) flow.EnrichmentAPI { return client.WithJar(jar) },
		sink,
		session.Config{
			TTL:           cfg.Session.TTL,
			SweepInterval: constants.SessionConfig.SweepInterval,
		},
		logger,
	)

	server := web.NewServer(web.Options{
		Addr:         cfg.Server.Addr,
		CookieSecure: cfg.Session.CookieSecure,
		TrustProxy:   cfg.Server.TrustProxy,
		ProfilePanel: web.ProfilePanel(cfg.UI.ProfilePanel),
		SessionTTL:   cfg.Session.TTL,
	}, sessions, logger)

	logger.Info("Application assembled",
		zap.String("enrichment_url", cfg.Enrichment.BaseURL),
		zap.String("session_store", cfg.Session.Store),
		zap.String("profile_panel", cfg.UI.ProfilePanel),
		zap.Bool("circuit_breaker", breaker != nil),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Server:   server,
		Sessions: sessions,
		closers:  closers,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Session.TTL, logger)
		if err != nil {
			return nil, errors.NewServiceError("failed to create redis session store", "redis", "connect", err)
		}
		return store, nil
	case config.StoreMemory, "":
		return session.NewMemoryStore(cfg.Session.TTL), nil
	default:
		return nil, errors.NewServiceError(fmt.Sprintf("unknown session store %q", cfg.Session.Store), "session", "build", nil)
	}
}

// Run serves HTTP and sweeps idle sessions until ctx is cancelled or either
// task fails.
func (c *Container) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return c.Server.Run(ctx)
	})
	p.Go(func(ctx context.Context) error {
		c.Sessions.Run(ctx)
		return nil
	})
	return p.Wait()
}

// Close releases everything Build opened.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
