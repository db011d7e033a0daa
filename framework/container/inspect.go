package container

import (
	"go/token"
	"reflect"
)

// Inspector answers reflection metadata queries about concrete component
// types. The injector only consumes this metadata; it never walks types on
// its own. Catalog is the default implementation.
type Inspector interface {
	// Abstract reports whether t can never be constructed directly.
	Abstract(t reflect.Type) bool

	// Annotations returns the type-level annotations of t (scope markers).
	Annotations(t reflect.Type) []Annotation

	// Constructors returns the constructors declared for t.
	Constructors(t reflect.Type) ([]Constructor, error)

	// Levels returns the embedding chain of t, most-base level first and t
	// itself last.
	Levels(t reflect.Type) []Level

	// Fields returns the fields declared directly at one level.
	Fields(level reflect.Type) ([]Field, error)

	// Methods returns the methods declared directly at one level.
	Methods(level reflect.Type) ([]Method, error)
}

// AnnotationParser turns a struct tag value such as "named=v8,singleton" into
// annotations. Inspectors that implement it enable ContextConfig.From.
type AnnotationParser interface {
	ParseAnnotations(tag string) ([]Annotation, error)
}

// Param is a constructor or method parameter.
type Param struct {
	Type        reflect.Type
	Annotations []Annotation
}

// Constructor is a function returning *T or (*T, error).
type Constructor struct {
	Func        reflect.Value
	Params      []Param
	Annotations []Annotation
}

// Fallible reports whether the constructor also returns an error.
func (c Constructor) Fallible() bool {
	return c.Func.Type().NumOut() == 2
}

// Level is one struct in an embedding chain. Path is the field index path
// from the concrete type down to this level; it is empty for the concrete
// type itself.
type Level struct {
	Type reflect.Type
	Path []int
}

// Field is a struct field declared at one level.
type Field struct {
	Name  string
	Index int
	Type  reflect.Type

	// Mutable is false for fields the injector cannot assign.
	Mutable     bool
	Annotations []Annotation
}

// Method is a method declared at one level. Func is a method expression
// taking the receiver as its first argument.
type Method struct {
	Name            string
	Package         string
	Func            reflect.Value
	Params          []Param
	PointerReceiver bool
	TypeParams      int
	Annotations     []Annotation
}

// Exported reports whether the method is visible outside its package.
func (m Method) Exported() bool { return token.IsExported(m.Name) }

// Overrides reports whether m, declared at a more derived level, overrides
// o. Members of one package always see each other; across packages both must
// be exported.
func (m Method) Overrides(o Method) bool {
	visible := m.Package == o.Package || (m.Exported() && o.Exported())
	if !visible || m.Name != o.Name || len(m.Params) != len(o.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i].Type != o.Params[i].Type {
			return false
		}
	}
	return true
}
