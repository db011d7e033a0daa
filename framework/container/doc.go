// Package container provides a dependency injection container that validates
// its whole object graph before handing out a single component.
//
// # Overview
//
// Components are identified by a Ref: a declared type plus an optional
// qualifier annotation. A ContextConfig binds refs to construction strategies
// (ComponentProvider), optionally wrapped by a scope. Build runs graph
// validation once and returns the read-only Container.
//
// # Container Lifecycle
//
//  1. Configure: cfg := container.NewContextConfig()
//  2. Bind: cfg.Instance / cfg.Component / cfg.From / cfg.Register
//  3. Finalize: c, err := cfg.Build()   (missing and cyclic dependencies fail here)
//  4. Resolve: c.Get(ref), container.Resolve[T](c)
//
// # Bindings
//
//	// Pre-built value, once per qualifier
//	container.Instance[*config.Config](cfg, conf)
//	cfg.Instance(reflect.TypeFor[Cylinder](), v8, container.Named{Value: "v8"})
//
//	// Component built by injection, bound under an interface
//	container.Component[Cylinder, V8Cylinder](cfg, container.Named{Value: "v8"})
//
//	// Singleton-scoped component
//	container.Component[*Garage, Garage](cfg, container.Singleton{})
//
//	// Custom scope
//	cfg.Scope(container.Pooled{}, container.PooledScope(2))
//	container.Component[*Worker, Worker](cfg, container.Pooled{})
//
// # Injection points
//
// Struct fields are marked with the inject tag. Constructors, methods and
// type-level annotations are declared in a Catalog, since Go cannot
// discover them at run time:
//
//	type Engine struct {
//	    Gauge  *Gauge                      `inject:""`
//	    Garage container.Provider[*Garage] `inject:"named=main"`
//	}
//
//	container.Describe[Engine](catalog).
//	    Constructor(NewEngine, container.Injected, container.Arg(0, container.Named{Value: "v8"})).
//	    Method("Attach", (*Engine).Attach, container.Injected)
//
// Injection runs constructor first, then for every embedding level from the
// innermost embedded struct out to the component itself: fields in
// declaration order, then methods in declaration order.
//
// # Breaking cycles
//
// Depending on Provider[T] instead of T defers the lookup of T until the
// provider's Get is called. Provider edges are never followed during graph
// validation, so two components may depend on each other as long as one of
// the edges goes through a provider.
//
// # Service Providers
//
//	type GarageProvider struct{ container.BaseProvider }
//
//	func (p *GarageProvider) Register(cfg *container.ContextConfig) error {
//	    return container.Component[*Garage, Garage](cfg, container.Singleton{})
//	}
//
//	registry := container.NewProviderRegistry(cfg)
//	registry.Register(&GarageProvider{})
//	c, err := registry.Boot()
package container
