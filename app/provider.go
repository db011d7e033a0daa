package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/routing"
)

// Catalog describes what struct tags cannot: constructors, inject methods
// and type-level annotations.
func Catalog() *container.Catalog {
	c := container.NewCatalog()
	c.RegisterMarker("pooled", container.Pooled{})

	container.Describe[V8Cylinder](c).
		Constructor(NewV8Cylinder)
	container.Describe[Engine](c).
		Constructor(NewEngine, container.Injected, container.Arg(0, container.Named{Value: "v8"})).
		Method("InstallIn", (*Engine).InstallIn, container.Injected)
	container.Describe[Workshop](c).
		Abstract().
		Method("Open", (*Workshop).Open, container.Injected)
	container.Describe[Garage](c).
		Annotate(container.Singleton{})
	return c
}

// Module exports the cylinder; a fresh pool per container.
type Module struct {
	Cylinder container.Export[Cylinder, V8Cylinder] `inject:"named=v8,pooled"`
}

// ServiceProvider binds the garage service. It expects the framework
// providers, which bind the logger, the configuration and the pooled scope.
type ServiceProvider struct{}

func (p *ServiceProvider) Register(cfg *container.ContextConfig) error {
	if err := cfg.From(Module{}); err != nil {
		return err
	}
	if err := container.Component[*Engine, Engine](cfg); err != nil {
		return err
	}
	if err := container.Component[*Garage, Garage](cfg); err != nil {
		return err
	}
	if err := container.Component[*EngineHandler, EngineHandler](cfg); err != nil {
		return err
	}
	return container.Component[*GarageHandler, GarageHandler](cfg, container.Singleton{})
}

// Boot opens the garage eagerly so configuration problems surface at startup.
func (p *ServiceProvider) Boot(c *container.Container) error {
	g, _, err := container.Resolve[*Garage](c)
	if err != nil {
		return err
	}
	if logger, ok, _ := container.Resolve[*zap.Logger](c); ok {
		logger.Info("garage ready", zap.String("name", g.Name))
	}
	return nil
}

// Routes declares the garage endpoints.
func Routes(r *routing.Router) {
	r.Prefix("/api", func(api *routing.Router) {
		routing.Component[*EngineHandler](api, http.MethodPost, "/engine/start")
		routing.Component[*GarageHandler](api, http.MethodGet, "/garage")
	})
}
