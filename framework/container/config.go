package container

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ── Bindings ─────────────────────────────────────────────────────────────────

// Binding describes one bound identity.
type Binding struct {
	Ref Ref

	// Component is the concrete type behind an injected binding, nil for
	// instances and custom providers.
	Component reflect.Type

	// Scope is nil for unscoped bindings.
	Scope        Annotation
	Dependencies []Ref
}

type binding struct {
	ref       Ref
	provider  ComponentProvider
	component reflect.Type
	scope     Annotation
}

func (b *binding) describe() Binding {
	return Binding{
		Ref:          b.ref,
		Component:    b.component,
		Scope:        b.scope,
		Dependencies: b.provider.Dependencies(),
	}
}

// ── ContextConfig ────────────────────────────────────────────────────────────

// ContextConfig accumulates bindings and finalizes them into a Container.
// It is meant to be filled from a single goroutine.
//
//	cfg := container.NewContextConfig(container.WithLogger(logger))
//	cfg.Instance(reflect.TypeFor[*Config](), conf)
//	cfg.Component(reflect.TypeFor[Cylinder](), reflect.TypeFor[V8Cylinder](), container.Named{Value: "v8"})
//	c, err := cfg.Build()
type ContextConfig struct {
	inspector Inspector
	logger    *zap.Logger
	observer  Observer

	scopes    map[reflect.Type]ScopeFunc
	bindings  map[Ref]*binding
	order     []Ref
	finalized bool
}

// Option configures a ContextConfig.
type Option func(*ContextConfig)

// WithInspector replaces the default catalog.
func WithInspector(inspector Inspector) Option {
	return func(c *ContextConfig) { c.inspector = inspector }
}

// WithLogger sets the logger used by the config and the container it builds.
func WithLogger(logger *zap.Logger) Option {
	return func(c *ContextConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer notified of every bound lookup.
func WithObserver(observer Observer) Option {
	return func(c *ContextConfig) { c.observer = observer }
}

// NewContextConfig returns an empty config with the Singleton scope defined.
func NewContextConfig(opts ...Option) *ContextConfig {
	c := &ContextConfig{
		inspector: NewCatalog(),
		logger:    zap.NewNop(),
		scopes:    make(map[reflect.Type]ScopeFunc),
		bindings:  make(map[Ref]*binding),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scopes[reflect.TypeFor[Singleton]()] = SingletonScope
	return c
}

// Inspector returns the metadata source used for components.
func (c *ContextConfig) Inspector() Inspector { return c.inspector }

// Scope defines the policy applied to components carrying annotations of
// scope's type.
//
//	cfg.Scope(container.Pooled{}, container.PooledScope(2))
func (c *ContextConfig) Scope(scope Annotation, policy ScopeFunc) error {
	if c.finalized {
		return contextFinalized()
	}
	if scope == nil || scope.Kind() != KindScope {
		return fmt.Errorf("container: %v is not a scope annotation", scope)
	}
	c.scopes[reflect.TypeOf(scope)] = policy
	return nil
}

// ── Registration ─────────────────────────────────────────────────────────────

// Register binds ref to provider, optionally wrapped by one scope.
func (c *ContextConfig) Register(ref Ref, provider ComponentProvider, scope ...Annotation) error {
	if c.finalized {
		return contextFinalized()
	}
	if ref.IsZero() || provider == nil {
		return fmt.Errorf("container: register needs a ref and a provider")
	}
	if len(scope) > 1 {
		return multipleScopes(ref.Type(), scope)
	}
	var s Annotation
	if len(scope) == 1 {
		s = scope[0]
		scoped, err := c.scoped(ref.Type(), provider, s)
		if err != nil {
			return err
		}
		provider = scoped
	}
	return c.bindAll([]Ref{ref}, provider, nil, s)
}

// RegisterInstance binds ref to value. Every lookup returns value itself.
func (c *ContextConfig) RegisterInstance(ref Ref, value any) error {
	if c.finalized {
		return contextFinalized()
	}
	if err := assignable(ref.Type(), value); err != nil {
		return err
	}
	return c.bindAll([]Ref{ref}, instanceProvider{value: value}, nil, nil)
}

// Instance binds value under t once per qualifier given, or unqualified when
// none is. Only qualifier annotations are accepted.
func (c *ContextConfig) Instance(t reflect.Type, value any, annotations ...Annotation) error {
	if c.finalized {
		return contextFinalized()
	}
	for _, a := range annotations {
		if a == nil || a.Kind() != KindQualifier || !isComparable(a) {
			return illegalQualifier(t, a)
		}
	}
	if err := distinctQualifiers(t, "instance", annotations); err != nil {
		return err
	}
	if err := assignable(t, value); err != nil {
		return err
	}
	return c.bindAll(refsOf(t, annotations), instanceProvider{value: value}, nil, nil)
}

// Component binds the concrete type impl under t, built by injection. *impl
// must be assignable to t. Annotations are qualifiers, each adding one more
// identity, and at most one scope; a scope annotation declared on impl
// itself counts too.
func (c *ContextConfig) Component(t, impl reflect.Type, annotations ...Annotation) error {
	if c.finalized {
		return contextFinalized()
	}

	var qualifiers, scopes []Annotation
	for _, a := range annotations {
		switch {
		case a != nil && a.Kind() == KindQualifier && isComparable(a):
			qualifiers = append(qualifiers, a)
		case a != nil && a.Kind() == KindScope:
			scopes = append(scopes, a)
		default:
			return illegalQualifier(t, a)
		}
	}
	if err := distinctQualifiers(t, "component", qualifiers); err != nil {
		return err
	}
	if !reflect.PointerTo(impl).AssignableTo(t) {
		return incompatibleComponent(t, fmt.Sprintf("%s is not assignable to it", reflect.PointerTo(impl)))
	}

	declared := ofKind(c.inspector.Annotations(impl), KindScope)
	switch {
	case len(declared) > 1:
		return multipleScopeAnnotations(impl, declared)
	case len(scopes) > 1:
		return multipleScopes(impl, scopes)
	case len(scopes) == 1 && len(declared) == 1:
		return multipleScopes(impl, append(scopes, declared...))
	}
	scopes = append(scopes, declared...)

	injector, err := NewInjectionProvider(impl, c.inspector)
	if err != nil {
		return err
	}
	var provider ComponentProvider = injector
	var scope Annotation
	if len(scopes) == 1 {
		scope = scopes[0]
		if provider, err = c.scoped(impl, provider, scope); err != nil {
			return err
		}
	}
	return c.bindAll(refsOf(t, qualifiers), provider, impl, scope)
}

// Bindings returns the bindings declared so far, in registration order.
func (c *ContextConfig) Bindings() []Binding {
	out := make([]Binding, len(c.order))
	for i, ref := range c.order {
		out[i] = c.bindings[ref].describe()
	}
	return out
}

// ── Finalization ─────────────────────────────────────────────────────────────

// Validate checks the binding graph for missing and cyclic dependencies
// without finalizing the config.
func (c *ContextConfig) Validate() error {
	return validate(c.bindings, c.order)
}

// Build validates the binding graph and returns the finalized container. A
// config builds at most once; after a failed Build it can be corrected and
// built again.
func (c *ContextConfig) Build() (*Container, error) {
	if c.finalized {
		return nil, contextFinalized()
	}
	if err := c.Validate(); err != nil {
		c.logger.Error("container validation failed", zap.Int("bindings", len(c.order)), zap.Error(err))
		return nil, err
	}
	c.finalized = true

	ct := newContainer(c.bindings, c.order, c.logger, c.observer)
	c.logger.Info("container finalized",
		zap.String("container", ct.ID()),
		zap.Int("bindings", len(c.order)),
	)
	return ct, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (c *ContextConfig) scoped(t reflect.Type, provider ComponentProvider, scope Annotation) (ComponentProvider, error) {
	if scope == nil || scope.Kind() != KindScope {
		return nil, scopeNotDefined(t, scope)
	}
	policy, ok := c.scopes[reflect.TypeOf(scope)]
	if !ok {
		return nil, scopeNotDefined(t, scope)
	}
	return policy(provider), nil
}

// bindAll binds every ref or none of them.
func (c *ContextConfig) bindAll(refs []Ref, provider ComponentProvider, component reflect.Type, scope Annotation) error {
	for _, ref := range refs {
		if _, exists := c.bindings[ref]; exists {
			return duplicateBinding(ref)
		}
	}
	for _, ref := range refs {
		c.bindings[ref] = &binding{ref: ref, provider: provider, component: component, scope: scope}
		c.order = append(c.order, ref)
		c.logger.Debug("component bound",
			zap.Stringer("ref", ref),
			zap.Int("dependencies", len(provider.Dependencies())),
		)
	}
	return nil
}

func refsOf(t reflect.Type, qualifiers []Annotation) []Ref {
	if len(qualifiers) == 0 {
		return []Ref{NewRef(t)}
	}
	refs := make([]Ref, len(qualifiers))
	for i, q := range qualifiers {
		refs[i] = NewRef(t, q)
	}
	return refs
}

// distinctQualifiers rejects two qualifiers of the same kind in one call.
func distinctQualifiers(t reflect.Type, where string, qualifiers []Annotation) error {
	seen := make(map[reflect.Type]bool, len(qualifiers))
	for _, q := range qualifiers {
		qt := reflect.TypeOf(q)
		if seen[qt] {
			return ambiguousQualifiers(t, where, qualifiers)
		}
		seen[qt] = true
	}
	return nil
}

func assignable(t reflect.Type, value any) error {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil
		}
		return incompatibleComponent(t, "nil is not assignable to it")
	}
	if vt := reflect.TypeOf(value); !vt.AssignableTo(t) {
		return incompatibleComponent(t, fmt.Sprintf("%s is not assignable to it", vt))
	}
	return nil
}
