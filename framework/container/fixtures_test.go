package container_test

import (
	"github.com/km-arc/go-inject/framework/container"
)

// ── shared fixtures ───────────────────────────────────────────────────────────

type Dependency interface{ Value() string }

type TestComponent interface{ Dependency() Dependency }

type plainDependency struct{ value string }

func (d *plainDependency) Value() string { return d.value }

// holder gives components a TestComponent implementation without becoming
// an embedding level (it is unexported).
type holder struct{ dep Dependency }

func (h *holder) Dependency() Dependency { return h.dep }

// Skywalker is a marker qualifier.
type Skywalker struct{}

func (Skywalker) Kind() container.Kind { return container.KindQualifier }

// Tracked is an annotation that is neither a qualifier nor a scope.
type Tracked struct{}

func (Tracked) Kind() container.Kind { return container.KindOther }

// stubContext resolves refs from a fixed table.
type stubContext map[container.Ref]any

func (s stubContext) Get(ref container.Ref) (any, bool, error) {
	v, ok := s[ref]
	return v, ok, nil
}

func newCatalog() *container.Catalog {
	catalog := container.NewCatalog()
	catalog.RegisterMarker("skywalker", Skywalker{})
	catalog.RegisterMarker("tracked", Tracked{})
	return catalog
}
