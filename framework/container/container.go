package container

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is notified after every lookup of a bound ref, including the
// lookups components make for their own dependencies.
type Observer interface {
	Resolved(ref Ref, elapsed time.Duration, err error)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the finalized, read-only lookup surface produced by
// ContextConfig.Build. It is safe for concurrent use.
//
//	engine, ok, err := c.Get(container.RefOf[*Engine]())
//	engine := container.MustResolve[*Engine](c)
type Container struct {
	id       string
	bindings map[Ref]*binding
	order    []Ref
	logger   *zap.Logger
	observer Observer
}

func newContainer(bindings map[Ref]*binding, order []Ref, logger *zap.Logger, observer Observer) *Container {
	c := &Container{
		id:       uuid.NewString(),
		bindings: make(map[Ref]*binding, len(bindings)),
		order:    append([]Ref(nil), order...),
		observer: observer,
	}
	for ref, b := range bindings {
		c.bindings[ref] = b
	}
	c.logger = logger.With(zap.String("container", c.id))
	return c
}

// ID identifies this container in logs.
func (c *Container) ID() string { return c.id }

// Get resolves ref. ok reports whether ref is bound; an unbound ref yields
// (nil, false, nil) and is never an error.
//
// A provider ref that is not bound itself resolves to a Provider bound to
// this container whenever its raw ref is. Nothing is constructed until the
// provider's Get is called.
func (c *Container) Get(ref Ref) (instance any, ok bool, err error) {
	return c.get(ref, nil)
}

func (c *Container) get(ref Ref, parent *resolution) (instance any, ok bool, err error) {
	b, bound := c.bindings[ref]
	if !bound {
		if ref.IsProvider() {
			raw := ref.Raw()
			if _, rawBound := c.bindings[raw]; rawBound {
				return newProvider(ref.Type(), func() (any, error) {
					v, _, err := c.get(raw, parent)
					return v, err
				}), true, nil
			}
		}
		return nil, false, nil
	}

	res := &resolution{container: c, ref: ref, provider: b.provider, parent: parent}
	res.active.Store(true)
	start := time.Now()
	instance, err = b.provider.Get(res)
	res.active.Store(false)
	if c.observer != nil {
		c.observer.Resolved(ref, time.Since(start), err)
	}
	if err != nil {
		c.logger.Error("component construction failed", zap.Stringer("ref", ref), zap.Error(err))
		return nil, true, err
	}
	return instance, true, nil
}

// resolution is the lookup context handed to a provider while ref is being
// constructed. Lookups made through it, including those of providers it
// injects, remember the chain of refs under construction.
type resolution struct {
	container *Container
	ref       Ref
	provider  ComponentProvider
	parent    *resolution
	active    atomic.Bool
}

func (r *resolution) Get(ref Ref) (any, bool, error) { return r.container.get(ref, r) }

// reentered reports whether provider is still constructing further up the
// chain that led to this lookup.
func (r *resolution) reentered(provider ComponentProvider) bool {
	for a := r.parent; a != nil; a = a.parent {
		if a.provider == provider && a.active.Load() {
			return true
		}
	}
	return false
}

// reentrant returns an error when ctx is a lookup of provider made while
// provider itself is constructing on the same chain.
func reentrant(ctx Context, provider ComponentProvider) error {
	r, ok := ctx.(*resolution)
	if !ok || !r.reentered(provider) {
		return nil
	}
	return &ConstructionError{Component: r.ref.ComponentType(), Err: ErrReentrantLookup}
}

// Has reports whether Get would find ref.
func (c *Container) Has(ref Ref) bool {
	if _, ok := c.bindings[ref]; ok {
		return true
	}
	if ref.IsProvider() {
		_, ok := c.bindings[ref.Raw()]
		return ok
	}
	return false
}

// Refs returns every bound ref in registration order.
func (c *Container) Refs() []Ref { return cloneRefs(c.order) }

// Dependencies returns the required set of ref's binding.
func (c *Container) Dependencies(ref Ref) ([]Ref, bool) {
	b, ok := c.bindings[ref]
	if !ok {
		return nil, false
	}
	return b.provider.Dependencies(), true
}

// Bindings describes every binding in registration order.
func (c *Container) Bindings() []Binding {
	out := make([]Binding, len(c.order))
	for i, ref := range c.order {
		out[i] = c.bindings[ref].describe()
	}
	return out
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is the typed form of Context.Get.
//
//	engine, ok, err := container.Resolve[*Engine](c)
//	v8, ok, err := container.Resolve[Cylinder](c, container.Named{Value: "v8"})
func Resolve[T any](ctx Context, qualifier ...Annotation) (T, bool, error) {
	var zero T
	ref := RefOf[T](qualifier...)
	v, ok, err := ctx.Get(ref)
	if err != nil || !ok {
		return zero, ok, err
	}
	if v == nil {
		return zero, true, nil
	}
	typed, isT := v.(T)
	if !isT {
		return zero, true, fmt.Errorf("container: %s resolved to %T", ref, v)
	}
	return typed, true, nil
}

// MustResolve is like Resolve but panics when T is unbound or fails to
// construct. Use it where a missing component is a programming error.
func MustResolve[T any](ctx Context, qualifier ...Annotation) T {
	v, ok, err := Resolve[T](ctx, qualifier...)
	if err != nil {
		panic(err)
	}
	if !ok {
		panic(fmt.Sprintf("container: no binding for %s", RefOf[T](qualifier...)))
	}
	return v
}

// Instance is the typed form of ContextConfig.Instance.
//
//	container.Instance[*config.Config](cfg, conf)
func Instance[T any](cfg *ContextConfig, value T, annotations ...Annotation) error {
	return cfg.Instance(reflect.TypeFor[T](), value, annotations...)
}

// Component is the typed form of ContextConfig.Component: C is built by
// injection and bound under T.
//
//	container.Component[Cylinder, V8Cylinder](cfg, container.Named{Value: "v8"})
func Component[T, C any](cfg *ContextConfig, annotations ...Annotation) error {
	return cfg.Component(reflect.TypeFor[T](), reflect.TypeFor[C](), annotations...)
}

var (
	_ Context = (*Container)(nil)
	_ Context = (*resolution)(nil)
)
