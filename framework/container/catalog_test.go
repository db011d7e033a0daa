package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

func TestCatalog_ParseAnnotations(t *testing.T) {
	catalog := newCatalog()

	got, err := catalog.ParseAnnotations("named=ChosenOne, skywalker,singleton")
	require.NoError(t, err)
	assert.Equal(t, []container.Annotation{
		container.Named{Value: "ChosenOne"},
		Skywalker{},
		container.Singleton{},
	}, got)

	got, err = catalog.ParseAnnotations("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = catalog.ParseAnnotations("named=a,jedi")
	assert.ErrorIs(t, err, container.ErrUnknownAnnotation)
}

func TestCatalog_Levels(t *testing.T) {
	catalog := newCatalog()

	levels := catalog.Levels(reflect.TypeFor[Garage]())
	require.Len(t, levels, 2)
	assert.Equal(t, reflect.TypeFor[Workshop](), levels[0].Type)
	assert.Equal(t, []int{0}, levels[0].Path)
	assert.Equal(t, reflect.TypeFor[Garage](), levels[1].Type)
	assert.Empty(t, levels[1].Path)

	// An unexported embedded struct is a plain field, not a level.
	assert.Len(t, catalog.Levels(reflect.TypeFor[ConstructorInjection]()), 1)
}

func TestCatalog_Fields(t *testing.T) {
	fields, err := newCatalog().Fields(reflect.TypeFor[Garage]())
	require.NoError(t, err)

	require.Len(t, fields, 1)
	assert.Equal(t, "Sign", fields[0].Name)
	assert.Equal(t, 1, fields[0].Index)
	assert.True(t, fields[0].Mutable)
	assert.Equal(t, []container.Annotation{container.Inject{}, container.Named{Value: "sign"}}, fields[0].Annotations)
}

func TestCatalog_Describe(t *testing.T) {
	catalog := newCatalog()
	container.Describe[MethodInjection](catalog).
		Annotate(container.Singleton{}).
		Method("Install", (*MethodInjection).Install, container.Injected, container.Arg(0, Skywalker{}))

	assert.Equal(t, []container.Annotation{container.Singleton{}}, catalog.Annotations(reflect.TypeFor[MethodInjection]()))

	methods, err := catalog.Methods(reflect.TypeFor[MethodInjection]())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Install", methods[0].Name)
	assert.True(t, methods[0].PointerReceiver)
	assert.Equal(t, []container.Annotation{Skywalker{}}, methods[0].Params[0].Annotations)
	assert.Equal(t, reflect.TypeFor[Dependency](), methods[0].Params[0].Type)
}

func TestCatalog_InvalidDescriptions(t *testing.T) {
	tests := []struct {
		name     string
		describe func(*container.Catalog)
	}{
		{"constructor is not a function", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Constructor(42)
		}},
		{"constructor with a bad second result", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Constructor(func() (*ZeroArg, int) { return nil, 0 })
		}},
		{"method of another type", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Method("Install", (*MethodInjection).Install)
		}},
		{"method with a result", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Method("Name", func(*ZeroArg) string { return "" })
		}},
		{"argument out of range", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Constructor(NewZeroArg, container.Arg(1, Skywalker{}))
		}},
		{"variadic method", func(c *container.Catalog) {
			container.Describe[ZeroArg](c).Method("Many", func(*ZeroArg, ...Dependency) {})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newCatalog()
			tt.describe(catalog)

			_, err := container.NewInjectionProvider(reflect.TypeFor[ZeroArg](), catalog)
			assert.ErrorIs(t, err, container.ErrInvalidDescription)
		})
	}
}
