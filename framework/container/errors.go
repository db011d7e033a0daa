package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ── Error codes ──────────────────────────────────────────────────────────────

const (
	CodeAbstractComponent     = "ABSTRACT_COMPONENT"
	CodeAmbiguousConstructors = "AMBIGUOUS_CONSTRUCTORS"
	CodeNoUsableConstructor   = "NO_USABLE_CONSTRUCTOR"
	CodeImmutableInjectField  = "IMMUTABLE_INJECT_FIELD"
	CodeGenericInjectMethod   = "GENERIC_INJECT_METHOD"
	CodeAmbiguousQualifiers   = "AMBIGUOUS_QUALIFIERS"
	CodeDependencyNotFound    = "DEPENDENCY_NOT_FOUND"
	CodeCyclicDependency      = "CYCLIC_DEPENDENCY"
	CodeMultipleScopes        = "MULTIPLE_SCOPES_PROVIDED"
	CodeMultipleScopeAnnots   = "MULTIPLE_SCOPE_ANNOTATIONS"
	CodeScopeNotDefined       = "SCOPE_NOT_DEFINED"
	CodeIllegalQualifier      = "ILLEGAL_QUALIFIER"
	CodeDuplicateBinding      = "DUPLICATE_BINDING"
	CodeIncompatibleComponent = "INCOMPATIBLE_COMPONENT"
	CodeInvalidDescription    = "INVALID_DESCRIPTION"
	CodeUnknownAnnotation     = "UNKNOWN_ANNOTATION"
	CodeContextFinalized      = "CONTEXT_FINALIZED"
)

// Error is a configuration error. Every configuration error is raised while
// bindings are declared or while the context is finalized, never at lookup.
type Error struct {
	Code      string
	Message   string
	Component reflect.Type
	Ref       Ref
	Path      []Ref
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	b.WriteString(e.Message)
	if len(e.Path) > 0 {
		b.WriteString(" (path: ")
		b.WriteString(formatPath(e.Path))
		b.WriteString(")")
	}
	return b.String()
}

// Is matches errors by code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrAbstractComponent     = &Error{Code: CodeAbstractComponent, Message: "abstract component"}
	ErrAmbiguousConstructors = &Error{Code: CodeAmbiguousConstructors, Message: "ambiguous injectable constructors"}
	ErrNoUsableConstructor   = &Error{Code: CodeNoUsableConstructor, Message: "no usable constructor"}
	ErrImmutableInjectField  = &Error{Code: CodeImmutableInjectField, Message: "immutable inject field"}
	ErrGenericInjectMethod   = &Error{Code: CodeGenericInjectMethod, Message: "inject method with type parameters"}
	ErrAmbiguousQualifiers   = &Error{Code: CodeAmbiguousQualifiers, Message: "ambiguous qualifiers"}
	ErrDependencyNotFound    = &Error{Code: CodeDependencyNotFound, Message: "dependency not found"}
	ErrCyclicDependency      = &Error{Code: CodeCyclicDependency, Message: "cyclic dependency"}
	ErrMultipleScopes        = &Error{Code: CodeMultipleScopes, Message: "multiple scopes provided"}
	ErrMultipleScopeAnnots   = &Error{Code: CodeMultipleScopeAnnots, Message: "multiple scope annotations"}
	ErrScopeNotDefined       = &Error{Code: CodeScopeNotDefined, Message: "scope not defined"}
	ErrIllegalQualifier      = &Error{Code: CodeIllegalQualifier, Message: "illegal qualifier"}
	ErrDuplicateBinding      = &Error{Code: CodeDuplicateBinding, Message: "duplicate binding"}
	ErrIncompatibleComponent = &Error{Code: CodeIncompatibleComponent, Message: "incompatible component"}
	ErrInvalidDescription    = &Error{Code: CodeInvalidDescription, Message: "invalid type description"}
	ErrUnknownAnnotation     = &Error{Code: CodeUnknownAnnotation, Message: "unknown annotation"}
	ErrContextFinalized      = &Error{Code: CodeContextFinalized, Message: "context already finalized"}
)

// ValidationError aggregates every violation found while validating the
// binding graph. It unwraps to each violation.
type ValidationError struct {
	Violations []*Error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = strings.TrimPrefix(v.Error(), "container: ")
	}
	return fmt.Sprintf("container: context validation failed with %d violation(s): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}

// ConstructionError wraps a failure raised by a component's own code (a
// constructor or inject method returning an error or panicking) while it was
// being built at lookup time.
type ConstructionError struct {
	Component reflect.Type
	Err       error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("container: constructing %s: %v", e.Component, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// ErrReentrantLookup is returned when a scoped component is looked up, for
// example through a Provider, while it is still being constructed.
var ErrReentrantLookup = errors.New("scoped component looked up during its own construction")

// ErrProviderUnbound is returned by a zero Provider.
var ErrProviderUnbound = errors.New("container: provider is not bound to a container")

// ── Constructors ─────────────────────────────────────────────────────────────

func abstractComponent(t reflect.Type) *Error {
	return &Error{Code: CodeAbstractComponent, Component: t,
		Message: fmt.Sprintf("%s is abstract and cannot be constructed", t)}
}

func ambiguousConstructors(t reflect.Type, n int) *Error {
	return &Error{Code: CodeAmbiguousConstructors, Component: t,
		Message: fmt.Sprintf("%s has %d injectable constructors", t, n)}
}

func noUsableConstructor(t reflect.Type) *Error {
	return &Error{Code: CodeNoUsableConstructor, Component: t,
		Message: fmt.Sprintf("%s has no injectable and no zero-argument constructor", t)}
}

func immutableInjectFields(t reflect.Type, names []string) *Error {
	return &Error{Code: CodeImmutableInjectField, Component: t,
		Message: fmt.Sprintf("%s declares immutable inject fields: %s", t, strings.Join(names, ", "))}
}

func genericInjectMethods(t reflect.Type, names []string) *Error {
	return &Error{Code: CodeGenericInjectMethod, Component: t,
		Message: fmt.Sprintf("%s declares inject methods with type parameters: %s", t, strings.Join(names, ", "))}
}

func ambiguousQualifiers(t reflect.Type, where string, qualifiers []Annotation) *Error {
	names := make([]string, len(qualifiers))
	for i, q := range qualifiers {
		names[i] = describe(q)
	}
	return &Error{Code: CodeAmbiguousQualifiers, Component: t,
		Message: fmt.Sprintf("%s: %s has more than one qualifier: %s", t, where, strings.Join(names, ", "))}
}

func dependencyNotFound(ref Ref, path []Ref) *Error {
	return &Error{Code: CodeDependencyNotFound, Ref: ref, Path: path,
		Message: fmt.Sprintf("no binding for %s", ref)}
}

func cyclicDependency(path []Ref) *Error {
	return &Error{Code: CodeCyclicDependency, Ref: path[0], Path: path,
		Message: fmt.Sprintf("cyclic dependency on %s", path[0])}
}

func multipleScopes(t reflect.Type, scopes []Annotation) *Error {
	return &Error{Code: CodeMultipleScopes, Component: t,
		Message: fmt.Sprintf("%s: more than one scope provided: %s", t, joinAnnotations(scopes))}
}

func multipleScopeAnnotations(t reflect.Type, scopes []Annotation) *Error {
	return &Error{Code: CodeMultipleScopeAnnots, Component: t,
		Message: fmt.Sprintf("%s is annotated with more than one scope: %s", t, joinAnnotations(scopes))}
}

func scopeNotDefined(t reflect.Type, scope Annotation) *Error {
	return &Error{Code: CodeScopeNotDefined, Component: t,
		Message: fmt.Sprintf("%s: scope %s is not defined", t, describe(scope))}
}

func illegalQualifier(t reflect.Type, a Annotation) *Error {
	return &Error{Code: CodeIllegalQualifier, Component: t,
		Message: fmt.Sprintf("%s: %s is not a qualifier", t, describe(a))}
}

func duplicateBinding(ref Ref) *Error {
	return &Error{Code: CodeDuplicateBinding, Ref: ref,
		Message: fmt.Sprintf("%s is already bound", ref)}
}

func incompatibleComponent(t reflect.Type, msg string) *Error {
	return &Error{Code: CodeIncompatibleComponent, Component: t,
		Message: fmt.Sprintf("%s: %s", t, msg)}
}

func invalidDescription(t reflect.Type, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidDescription, Component: t,
		Message: fmt.Sprintf("%s: %s", t, fmt.Sprintf(format, args...))}
}

func unknownAnnotation(name string) *Error {
	return &Error{Code: CodeUnknownAnnotation,
		Message: fmt.Sprintf("annotation %q is not registered", name)}
}

func contextFinalized() *Error {
	return &Error{Code: CodeContextFinalized,
		Message: "bindings cannot change after the context is finalized"}
}

func formatPath(path []Ref) string {
	parts := make([]string, len(path))
	for i, r := range path {
		parts[i] = r.String()
	}
	return strings.Join(parts, " -> ")
}

func joinAnnotations(as []Annotation) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = describe(a)
	}
	return strings.Join(parts, ", ")
}
