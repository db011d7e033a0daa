package container

import (
	"fmt"
	"reflect"
)

// Ref identifies a component: a declared type plus an optional qualifier.
// Refs are comparable and are used as map keys throughout the container.
//
// A ref whose declared type is Provider[T] is a provider ref. Looking it up
// yields a deferred factory for T instead of constructing T.
type Ref struct {
	declared  reflect.Type
	component reflect.Type
	qualifier Annotation
}

// NewRef builds a ref for t, qualified by at most one annotation.
func NewRef(t reflect.Type, qualifier ...Annotation) Ref {
	if t == nil {
		panic("container: ref of nil type")
	}
	if len(qualifier) > 1 {
		panic(fmt.Sprintf("container: ref of %s carries %d qualifiers", t, len(qualifier)))
	}
	ref := Ref{declared: t, component: t}
	if elem, ok := providedType(t); ok {
		ref.component = elem
	}
	if len(qualifier) == 1 && qualifier[0] != nil {
		if !isComparable(qualifier[0]) {
			panic(fmt.Sprintf("container: qualifier %T is not comparable", qualifier[0]))
		}
		ref.qualifier = qualifier[0]
	}
	return ref
}

// RefOf returns the ref for T.
//
//	container.RefOf[Cylinder](container.Named{Value: "v8"})
func RefOf[T any](qualifier ...Annotation) Ref {
	return NewRef(reflect.TypeFor[T](), qualifier...)
}

// ProviderRefOf returns the provider ref for T, i.e. the ref of Provider[T].
func ProviderRefOf[T any](qualifier ...Annotation) Ref {
	return NewRef(reflect.TypeFor[Provider[T]](), qualifier...)
}

// Type returns the declared type.
func (r Ref) Type() reflect.Type { return r.declared }

// ComponentType returns the type of the component the ref resolves to. For
// provider refs it is the provided type, otherwise the declared type.
func (r Ref) ComponentType() reflect.Type { return r.component }

// Qualifier returns the qualifier, or nil.
func (r Ref) Qualifier() Annotation { return r.qualifier }

// IsProvider reports whether r is a provider ref.
func (r Ref) IsProvider() bool { return r.declared != r.component }

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool { return r.declared == nil }

// Raw returns the ref of the component behind a provider ref, keeping the
// qualifier. For other refs it returns r.
func (r Ref) Raw() Ref {
	if !r.IsProvider() {
		return r
	}
	return NewRef(r.component, r.qualifier)
}

func (r Ref) String() string {
	if r.declared == nil {
		return "<none>"
	}
	if r.qualifier == nil {
		return r.declared.String()
	}
	return describe(r.qualifier) + " " + r.declared.String()
}
