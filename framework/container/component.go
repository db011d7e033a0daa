package container

import (
	"fmt"
	"reflect"
	"slices"
)

// Context is the lookup surface handed to component providers and to callers
// of a finalized container.
type Context interface {
	// Get resolves ref. An unbound ref yields (nil, false, nil).
	Get(ref Ref) (any, bool, error)
}

// ComponentProvider is a construction strategy: it produces an instance from
// a live lookup context and declares the refs it needs to do so.
type ComponentProvider interface {
	Get(ctx Context) (any, error)

	// Dependencies is computed once when the provider is built and never
	// changes afterwards.
	Dependencies() []Ref
}

// ScopeFunc wraps a provider with a caching or pooling policy. The returned
// provider must report the same dependencies as the one it wraps.
type ScopeFunc func(provider ComponentProvider) ComponentProvider

// instanceProvider always yields the same pre-built value.
type instanceProvider struct {
	value any
}

func (p instanceProvider) Get(Context) (any, error) { return p.value, nil }
func (p instanceProvider) Dependencies() []Ref      { return nil }

// ── Provider[T] ──────────────────────────────────────────────────────────────

// Provider is a deferred factory for T. Declaring a dependency as Provider[T]
// instead of T defers the lookup of T until Get is called, which is how
// construction-time cycles are broken:
//
//	type Dashboard struct {
//	    Engine container.Provider[*Engine] `inject:""`
//	}
type Provider[T any] struct {
	lookup func() (any, error)
}

// Get looks T up in the container the provider was resolved from. Scoped
// components follow their scope; unscoped ones are constructed on every call.
func (p Provider[T]) Get() (T, error) {
	var zero T
	if p.lookup == nil {
		return zero, ErrProviderUnbound
	}
	v, err := p.lookup()
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: provider of %s resolved %T", reflect.TypeFor[T](), v)
	}
	return typed, nil
}

// MustGet is like Get but panics on failure.
func (p Provider[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (Provider[T]) providedType() reflect.Type { return reflect.TypeFor[T]() }

func (Provider[T]) bind(lookup func() (any, error)) any { return Provider[T]{lookup: lookup} }

// deferred is implemented by every Provider[T] instantiation.
type deferred interface {
	providedType() reflect.Type
	bind(lookup func() (any, error)) any
}

var deferredType = reflect.TypeFor[deferred]()

// providedType reports T when t is Provider[T]. Structs embedding a
// Provider get its methods promoted but are not providers themselves.
func providedType(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !t.Implements(deferredType) {
		return nil, false
	}
	d := reflect.Zero(t).Interface().(deferred)
	if reflect.TypeOf(d.bind(nil)) != t {
		return nil, false
	}
	return d.providedType(), true
}

// newProvider builds a Provider value of type t (a Provider[T]) bound to lookup.
func newProvider(t reflect.Type, lookup func() (any, error)) any {
	return reflect.Zero(t).Interface().(deferred).bind(lookup)
}

func cloneRefs(refs []Ref) []Ref {
	return slices.Clone(refs)
}
