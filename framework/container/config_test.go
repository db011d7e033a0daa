package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

type NotSingleton struct{ holder }

type SingletonAnnotated struct{ holder }

func (s *SingletonAnnotated) Value() string { return "singleton" }

type MultiScopeAnnotated struct{}

func newConfig(t *testing.T, describe ...func(*container.Catalog)) *container.ContextConfig {
	t.Helper()
	catalog := newCatalog()
	container.Describe[ConstructorInjection](catalog).Constructor(NewConstructorInjection, container.Injected)
	container.Describe[SingletonAnnotated](catalog).Annotate(container.Singleton{})
	container.Describe[MultiScopeAnnotated](catalog).Annotate(container.Singleton{}, container.Pooled{})
	for _, d := range describe {
		d(catalog)
	}
	return container.NewContextConfig(container.WithInspector(catalog))
}

func build(t *testing.T, cfg *container.ContextConfig) *container.Container {
	t.Helper()
	c, err := cfg.Build()
	require.NoError(t, err)
	return c
}

func get(t *testing.T, c container.Context, ref container.Ref) any {
	t.Helper()
	v, ok, err := c.Get(ref)
	require.NoError(t, err)
	require.True(t, ok, "%s should be bound", ref)
	return v
}

// ── Type binding ──────────────────────────────────────────────────────────────

func TestConfig_Instance(t *testing.T) {
	cfg := newConfig(t)
	instance := &plainDependency{value: "instance"}
	require.NoError(t, container.Instance[Dependency](cfg, instance))

	c := build(t, cfg)
	assert.Same(t, instance, get(t, c, container.RefOf[Dependency]()))
	assert.Same(t, instance, get(t, c, container.RefOf[Dependency]()))
}

func TestConfig_RegisterInstance(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.RegisterInstance(container.RefOf[Dependency](), dep))

	err := cfg.RegisterInstance(container.RefOf[string](), 42)
	assert.ErrorIs(t, err, container.ErrIncompatibleComponent)

	assert.Same(t, dep, get(t, build(t, cfg), container.RefOf[Dependency]()))
}

func TestConfig_Component(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep))
	require.NoError(t, container.Component[TestComponent, ConstructorInjection](cfg))

	component := get(t, build(t, cfg), container.RefOf[TestComponent]())
	assert.Same(t, dep, component.(TestComponent).Dependency())
}

func TestConfig_Register(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.Register(container.RefOf[*NotSingleton](), provider(func() any { return &NotSingleton{} })))

	c := build(t, cfg)
	assert.IsType(t, &NotSingleton{}, get(t, c, container.RefOf[*NotSingleton]()))
}

func TestConfig_UnboundIsAbsent(t *testing.T) {
	c := build(t, newConfig(t))

	for _, ref := range []container.Ref{
		container.RefOf[Dependency](),
		container.RefOf[[]Dependency](),
		container.ProviderRefOf[Dependency](),
	} {
		v, ok, err := c.Get(ref)
		assert.NoError(t, err)
		assert.False(t, ok, ref.String())
		assert.Nil(t, v)
	}
}

func TestConfig_ProviderLookup(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep))
	c := build(t, cfg)

	p := get(t, c, container.ProviderRefOf[Dependency]()).(container.Provider[Dependency])
	got, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, dep, got)
}

func TestConfig_ZeroProviderIsUnbound(t *testing.T) {
	var p container.Provider[Dependency]
	_, err := p.Get()
	assert.ErrorIs(t, err, container.ErrProviderUnbound)
}

// ── Qualifiers ────────────────────────────────────────────────────────────────

func TestConfig_InstanceWithQualifiers(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep, container.Named{Value: "ChosenOne"}, Skywalker{}))
	c := build(t, cfg)

	assert.Same(t, dep, get(t, c, container.RefOf[Dependency](container.Named{Value: "ChosenOne"})))
	assert.Same(t, dep, get(t, c, container.RefOf[Dependency](Skywalker{})))

	_, ok, _ := c.Get(container.RefOf[Dependency]())
	assert.False(t, ok, "qualified bindings must not satisfy the unqualified ref")
}

func TestConfig_ComponentWithQualifiers(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep))
	require.NoError(t, container.Component[TestComponent, ConstructorInjection](cfg,
		container.Named{Value: "ChosenOne"}, Skywalker{}))
	c := build(t, cfg)

	chosen := get(t, c, container.RefOf[TestComponent](container.Named{Value: "ChosenOne"})).(TestComponent)
	skywalker := get(t, c, container.RefOf[TestComponent](Skywalker{})).(TestComponent)
	assert.Same(t, dep, chosen.Dependency())
	assert.Same(t, dep, skywalker.Dependency())
}

func TestConfig_QualifiedProviderLookup(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep, Skywalker{}))
	c := build(t, cfg)

	p, ok, err := container.Resolve[container.Provider[Dependency]](c, Skywalker{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, dep, p.MustGet())

	_, ok, _ = c.Get(container.ProviderRefOf[Dependency]())
	assert.False(t, ok)
}

func TestConfig_QualifierErrors(t *testing.T) {
	tests := []struct {
		name string
		bind func(*container.ContextConfig) error
		want error
	}{
		{"instance with a scope", func(cfg *container.ContextConfig) error {
			return container.Instance[Dependency](cfg, dep, container.Singleton{})
		}, container.ErrIllegalQualifier},
		{"instance with a plain annotation", func(cfg *container.ContextConfig) error {
			return container.Instance[Dependency](cfg, dep, Tracked{})
		}, container.ErrIllegalQualifier},
		{"component with a plain annotation", func(cfg *container.ContextConfig) error {
			return container.Component[TestComponent, ConstructorInjection](cfg, Tracked{})
		}, container.ErrIllegalQualifier},
		{"two qualifiers of one kind", func(cfg *container.ContextConfig) error {
			return container.Instance[Dependency](cfg, dep, container.Named{Value: "a"}, container.Named{Value: "b"})
		}, container.ErrAmbiguousQualifiers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.bind(newConfig(t)), tt.want)
		})
	}
}

// ── Binding errors ────────────────────────────────────────────────────────────

func TestConfig_DuplicateBinding(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep, Skywalker{}))

	err := container.Instance[Dependency](cfg, dep, container.Named{Value: "fresh"}, Skywalker{})
	assert.ErrorIs(t, err, container.ErrDuplicateBinding)

	// Nothing from the failed call is bound.
	c := build(t, cfg)
	_, ok, _ := c.Get(container.RefOf[Dependency](container.Named{Value: "fresh"}))
	assert.False(t, ok)
}

func TestConfig_IncompatibleComponent(t *testing.T) {
	err := container.Component[Dependency, ConstructorInjection](newConfig(t))
	assert.ErrorIs(t, err, container.ErrIncompatibleComponent)

	err = container.Instance[any](newConfig(t), nil)
	assert.NoError(t, err)

	err = newConfig(t).Instance(reflect.TypeFor[int](), "seven")
	assert.ErrorIs(t, err, container.ErrIncompatibleComponent)
}

// ── Scopes ────────────────────────────────────────────────────────────────────

func TestConfig_Scopes(t *testing.T) {
	tests := []struct {
		name       string
		qualifiers []container.Annotation
	}{
		{"unqualified", nil},
		{"qualified", []container.Annotation{Skywalker{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := container.RefOf[*NotSingleton](tt.qualifiers...)

			t.Run("not singleton by default", func(t *testing.T) {
				cfg := newConfig(t)
				require.NoError(t, container.Component[*NotSingleton, NotSingleton](cfg, tt.qualifiers...))
				c := build(t, cfg)
				assert.NotSame(t, get(t, c, ref), get(t, c, ref))
			})

			t.Run("singleton", func(t *testing.T) {
				cfg := newConfig(t)
				annotations := append([]container.Annotation{container.Singleton{}}, tt.qualifiers...)
				require.NoError(t, container.Component[*NotSingleton, NotSingleton](cfg, annotations...))
				c := build(t, cfg)
				assert.Same(t, get(t, c, ref), get(t, c, ref))
			})

			t.Run("scope annotated on the component", func(t *testing.T) {
				cfg := newConfig(t)
				require.NoError(t, container.Component[Dependency, SingletonAnnotated](cfg, tt.qualifiers...))
				c := build(t, cfg)
				depRef := container.RefOf[Dependency](tt.qualifiers...)
				assert.Same(t, get(t, c, depRef), get(t, c, depRef))
			})
		})
	}
}

func TestConfig_PooledScope(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.Scope(container.Pooled{}, container.PooledScope(2)))
	require.NoError(t, container.Component[*NotSingleton, NotSingleton](cfg, container.Pooled{}))
	c := build(t, cfg)

	ref := container.RefOf[*NotSingleton]()
	instances := make([]any, 5)
	for i := range instances {
		instances[i] = get(t, c, ref)
	}

	assert.NotSame(t, instances[0], instances[1])
	assert.Same(t, instances[0], instances[2])
	assert.Same(t, instances[1], instances[3])
	assert.Same(t, instances[0], instances[4])
}

func TestConfig_ScopeErrors(t *testing.T) {
	tests := []struct {
		name string
		bind func(*container.ContextConfig) error
		want error
	}{
		{"two explicit scopes", func(cfg *container.ContextConfig) error {
			if err := cfg.Scope(container.Pooled{}, container.PooledScope(2)); err != nil {
				return err
			}
			return container.Component[*NotSingleton, NotSingleton](cfg, container.Singleton{}, container.Pooled{})
		}, container.ErrMultipleScopes},
		{"explicit scope on an annotated component", func(cfg *container.ContextConfig) error {
			return container.Component[Dependency, SingletonAnnotated](cfg, container.Singleton{})
		}, container.ErrMultipleScopes},
		{"two scope annotations", func(cfg *container.ContextConfig) error {
			return container.Component[*MultiScopeAnnotated, MultiScopeAnnotated](cfg)
		}, container.ErrMultipleScopeAnnots},
		{"undefined scope", func(cfg *container.ContextConfig) error {
			return container.Component[*NotSingleton, NotSingleton](cfg, container.Pooled{})
		}, container.ErrScopeNotDefined},
		{"register with two scopes", func(cfg *container.ContextConfig) error {
			return cfg.Register(container.RefOf[*NotSingleton](), provider(func() any { return &NotSingleton{} }),
				container.Singleton{}, container.Pooled{})
		}, container.ErrMultipleScopes},
		{"register with an undefined scope", func(cfg *container.ContextConfig) error {
			return cfg.Register(container.RefOf[*NotSingleton](), provider(func() any { return &NotSingleton{} }),
				container.Pooled{})
		}, container.ErrScopeNotDefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.bind(newConfig(t)), tt.want)
		})
	}
}

// ── Finalization ──────────────────────────────────────────────────────────────

func TestConfig_BuildOnce(t *testing.T) {
	cfg := newConfig(t)
	build(t, cfg)

	_, err := cfg.Build()
	assert.ErrorIs(t, err, container.ErrContextFinalized)
	assert.ErrorIs(t, container.Instance[Dependency](cfg, dep), container.ErrContextFinalized)
	assert.ErrorIs(t, cfg.Scope(container.Pooled{}, container.PooledScope(1)), container.ErrContextFinalized)
}

func TestConfig_FailedBuildCanBeFixed(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Component[TestComponent, ConstructorInjection](cfg))

	_, err := cfg.Build()
	require.ErrorIs(t, err, container.ErrDependencyNotFound)

	require.NoError(t, container.Instance[Dependency](cfg, dep))
	c := build(t, cfg)
	assert.Same(t, dep, get(t, c, container.RefOf[TestComponent]()).(TestComponent).Dependency())
}

func TestConfig_Bindings(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, container.Instance[Dependency](cfg, dep))
	require.NoError(t, container.Component[TestComponent, ConstructorInjection](cfg, container.Singleton{}))

	bindings := cfg.Bindings()
	require.Len(t, bindings, 2)

	assert.Equal(t, container.RefOf[Dependency](), bindings[0].Ref)
	assert.Nil(t, bindings[0].Component)
	assert.Nil(t, bindings[0].Scope)

	assert.Equal(t, container.RefOf[TestComponent](), bindings[1].Ref)
	assert.Equal(t, reflect.TypeFor[ConstructorInjection](), bindings[1].Component)
	assert.Equal(t, container.Singleton{}, bindings[1].Scope)
	assert.Equal(t, []container.Ref{container.RefOf[Dependency]()}, bindings[1].Dependencies)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// provider adapts a function to ComponentProvider.
type provider func() any

func (p provider) Get(container.Context) (any, error) { return p(), nil }
func (p provider) Dependencies() []container.Ref      { return nil }
