package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/metrics"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, logging, metrics and routing around one
// container. Framework providers are registered first, so user providers
// can depend on *config.Config, *zap.Logger and *metrics.Collector.
type Application struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Providers *container.ProviderRegistry
	routing   *providers.RoutingServiceProvider
}

// Option configures an Application.
type Option func(*options)

type options struct {
	inspector container.Inspector
	logger    *zap.Logger
}

// WithInspector sets the inspector component metadata is read from.
func WithInspector(inspector container.Inspector) Option {
	return func(o *options) { o.inspector = inspector }
}

// WithLogger replaces the logger built from configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates the application and registers the framework providers.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = logging.New(cfg); err != nil {
			return nil, err
		}
	}
	collector := metrics.New()

	ctxOpts := []container.Option{container.WithLogger(logger), container.WithObserver(collector)}
	if o.inspector != nil {
		ctxOpts = append(ctxOpts, container.WithInspector(o.inspector))
	}
	registry := container.NewProviderRegistry(container.NewContextConfig(ctxOpts...))

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Metrics:   collector,
		Providers: registry,
		routing:   &providers.RoutingServiceProvider{},
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.MetricsServiceProvider{Collector: collector},
		a.routing,
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Routes queues fn to declare routes once the container is booted.
func (a *Application) Routes(fn func(r *routing.Router)) {
	a.routing.Routes(fn)
}

// Boot finalizes the container and boots every provider.
func (a *Application) Boot() (*container.Container, error) {
	return a.Providers.Boot()
}

// Container returns the finalized container, or nil before Boot.
func (a *Application) Container() *container.Container { return a.Providers.Container() }

// Handler boots the application if needed and returns its router. An
// application that failed to boot never yields a handler.
func (a *Application) Handler() (http.Handler, error) {
	if _, err := a.Boot(); err != nil {
		return nil, err
	}
	router := a.routing.Router()
	if router == nil {
		return nil, errors.New("app: router was not built at boot")
	}
	return router, nil
}

// Serve boots the application and serves HTTP on l until ctx is done, then
// shuts the server down gracefully.
func (a *Application) Serve(ctx context.Context, l net.Listener) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("server started",
			zap.String("app", a.Config.App.Name),
			zap.String("env", a.Environment()),
			zap.Bool("debug", a.IsDebug()),
			zap.String("addr", l.Addr().String()),
		)
		if a.IsProduction() && a.IsDebug() {
			a.Logger.Warn("debug mode is enabled in production")
		}
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Logger.Info("server stopping")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Run listens on APP_PORT (default 8000) and serves until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", ":"+a.Config.App.Port)
	if err != nil {
		return err
	}
	return a.Serve(ctx, l)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
