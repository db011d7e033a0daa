package container

import (
	"fmt"
	"reflect"
)

// Kind classifies an annotation.
type Kind int

const (
	KindOther Kind = iota
	KindInject
	KindQualifier
	KindScope
)

func (k Kind) String() string {
	switch k {
	case KindInject:
		return "inject"
	case KindQualifier:
		return "qualifier"
	case KindScope:
		return "scope"
	default:
		return "other"
	}
}

// Annotation is a marker attached to a component type, an injection point or
// a registration call. Implementations must be comparable value types: two
// annotations are equal when their types and payloads are equal.
//
//	type Skywalker struct{}
//
//	func (Skywalker) Kind() container.Kind { return container.KindQualifier }
type Annotation interface {
	Kind() Kind
}

// Inject marks a constructor, field or method as an injection point.
type Inject struct{}

func (Inject) Kind() Kind     { return KindInject }
func (Inject) String() string { return "@Inject" }

// Named is the built-in string qualifier.
//
//	container.RefOf[Cylinder](container.Named{Value: "v8"})
type Named struct {
	Value string
}

func (Named) Kind() Kind       { return KindQualifier }
func (n Named) String() string { return fmt.Sprintf("@Named(%q)", n.Value) }

// Singleton is the built-in scope: one instance per container.
type Singleton struct{}

func (Singleton) Kind() Kind     { return KindScope }
func (Singleton) String() string { return "@Singleton" }

// Pooled is a scope marker for PooledScope. It is not registered by default;
// bind a policy with ContextConfig.Scope before using it.
type Pooled struct{}

func (Pooled) Kind() Kind     { return KindScope }
func (Pooled) String() string { return "@Pooled" }

// ── helpers ─────────────────────────────────────────────────────────────────

func ofKind(annotations []Annotation, kind Kind) []Annotation {
	var out []Annotation
	for _, a := range annotations {
		if a != nil && a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

func hasKind(annotations []Annotation, kind Kind) bool {
	return len(ofKind(annotations, kind)) > 0
}

func isComparable(a Annotation) bool {
	return a != nil && reflect.TypeOf(a).Comparable()
}

func describe(a Annotation) string {
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("@%T", a)
}
