package providers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/metrics"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration and the scopes
// it parameterizes.
//
// Bound identities:
//   - *config.Config
//   - @Pooled scope, sized by Container.PoolSize
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(cfg *container.ContextConfig) error {
	if err := container.Instance(cfg, p.Config); err != nil {
		return err
	}
	return cfg.Scope(container.Pooled{}, container.PooledScope(p.Config.Container.PoolSize))
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound identities:
//   - *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(cfg *container.ContextConfig) error {
	return container.Instance(cfg, p.Logger)
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the metrics collector and publishes the
// binding count once the container is finalized.
//
// Bound identities:
//   - *metrics.Collector
type MetricsServiceProvider struct {
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(cfg *container.ContextConfig) error {
	return container.Instance(cfg, p.Collector)
}

func (p *MetricsServiceProvider) Boot(c *container.Container) error {
	p.Collector.Bindings.Set(float64(len(c.Refs())))
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider builds the HTTP router once the container exists.
// Routes are declared by the callbacks passed to Routes, in order.
//
// Built-in routes:
//   - GET /health    liveness probe
//   - GET /bindings  every binding of the container
//   - GET <Metrics.Path> when metrics are enabled
type RoutingServiceProvider struct {
	container.BaseProvider
	router *routing.Router
	routes []func(r *routing.Router)
}

func (p *RoutingServiceProvider) Register(*container.ContextConfig) error { return nil }

// Routes queues fn to run against the router at boot.
func (p *RoutingServiceProvider) Routes(fn func(r *routing.Router)) {
	p.routes = append(p.routes, fn)
}

func (p *RoutingServiceProvider) Boot(c *container.Container) error {
	conf, _, err := container.Resolve[*config.Config](c)
	if err != nil {
		return err
	}
	logger, _, err := container.Resolve[*zap.Logger](c)
	if err != nil {
		return err
	}
	collector, _, err := container.Resolve[*metrics.Collector](c)
	if err != nil {
		return err
	}

	var opts []routing.Option
	if logger != nil {
		opts = append(opts, routing.WithLogger(logger))
	}
	if collector != nil {
		opts = append(opts, routing.WithObserver(collector))
	}
	r := routing.New(c, opts...)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).NoContent()
	})
	r.Get("/bindings", bindingsHandler(c))
	if collector != nil && conf != nil && conf.Metrics.Enabled {
		r.Mount(conf.Metrics.Path, collector.Handler())
	}
	for _, fn := range p.routes {
		fn(r)
	}
	p.router = r
	return nil
}

// Router returns the router built at boot, or nil before.
func (p *RoutingServiceProvider) Router() *routing.Router { return p.router }
