package app

import (
	"context"
	"fmt"
	"io"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "envdashboard/libs/redis"
	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/config"
	"envdashboard/services/dashboard-cli/internal/router"
	"envdashboard/services/dashboard-cli/internal/session"
	"envdashboard/services/dashboard-cli/internal/store"
)

// App wires envmon dependencies.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	session   *session.Session
	client    *clients.Client
	dashboard *store.Dashboard
	guard     *router.Guard

	in  io.Reader
	out io.Writer

	redis *goredis.Client
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger, in: in, out: out}

	storage, err := a.tokenStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.session = session.New(storage, logger)

	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())
	a.client = clients.NewClient(cfg.Endpoint(), httpClient, a.session, logger)
	a.dashboard = store.NewDashboard(a.client, cfg.SensorCategories(), logger)
	a.guard = router.NewGuard(a.client, router.Routes)

	logger.Debug("envmon ready",
		zap.String("endpoint", a.client.BaseURL()),
		zap.String("session_backend", cfg.Session.Backend),
	)
	return a, nil
}

func (a *App) tokenStorage(ctx context.Context) (session.TokenStorage, error) {
	switch a.cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), nil
	case config.SessionBackendRedis:
		client, err := libredis.NewClient(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return session.NewRedisStorage(client, a.cfg.Session.Profile, a.cfg.Session.TTL), nil
	default:
		path := a.cfg.Session.File
		if path == "" {
			p, err := session.DefaultCredentialsPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return session.NewFileStorage(path), nil
	}
}

// Close releases resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
}

// enter runs the navigation guard for the route a command belongs to.
func (a *App) enter(ctx context.Context, route string) error {
	got, redirected, err := a.guard.Enter(ctx, route)
	if err != nil {
		return err
	}
	if redirected {
		return fmt.Errorf("%s requires login: run `envmon login` first (redirected to %s)", route, got.Path)
	}
	return nil
}
