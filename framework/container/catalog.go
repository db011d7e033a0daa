package container

import (
	"reflect"
	"strings"
	"sync"
)

// InjectTag is the struct tag that marks an inject field. Its value lists
// annotations by catalog name:
//
//	type Engine struct {
//	    Cylinder Cylinder `inject:"named=v8"`
//	    Gauge    Gauge    `inject:""`
//	}
const InjectTag = "inject"

var errorType = reflect.TypeFor[error]()

// AnnotationFactory builds an annotation from the argument written after "="
// in a tag ("" when there is none).
type AnnotationFactory func(arg string) (Annotation, error)

// Catalog is the default Inspector. Embedding chains and fields come from
// reflect and struct tags; constructors, methods and type annotations, which
// Go cannot discover at run time, come from registration tables filled with
// Describe.
//
//	catalog := container.NewCatalog()
//	container.Describe[Engine](catalog).
//	    Constructor(NewEngine, container.Injected, container.Arg(0, container.Named{Value: "v8"})).
//	    Method("Install", (*Engine).Install, container.Injected)
type Catalog struct {
	mu    sync.RWMutex
	types map[reflect.Type]*description
	names map[string]AnnotationFactory
}

type description struct {
	abstract     bool
	annotations  []Annotation
	constructors []Constructor
	methods      []Method
	err          error
}

// NewCatalog returns a catalog knowing the "named" and "singleton" tag names.
func NewCatalog() *Catalog {
	c := &Catalog{
		types: make(map[reflect.Type]*description),
		names: make(map[string]AnnotationFactory),
	}
	c.RegisterAnnotation("named", func(arg string) (Annotation, error) {
		return Named{Value: arg}, nil
	})
	c.RegisterMarker("singleton", Singleton{})
	return c
}

// ── Tag names ────────────────────────────────────────────────────────────────

// RegisterAnnotation makes name usable in inject tags.
func (c *Catalog) RegisterAnnotation(name string, factory AnnotationFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[name] = factory
}

// RegisterMarker makes name usable in inject tags for an annotation without
// arguments.
//
//	catalog.RegisterMarker("skywalker", Skywalker{})
func (c *Catalog) RegisterMarker(name string, a Annotation) {
	c.RegisterAnnotation(name, func(string) (Annotation, error) { return a, nil })
}

// ParseAnnotations implements AnnotationParser.
func (c *Catalog) ParseAnnotations(tag string) ([]Annotation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Annotation
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, _ := strings.Cut(part, "=")
		factory, ok := c.names[strings.TrimSpace(name)]
		if !ok {
			return nil, unknownAnnotation(name)
		}
		a, err := factory(strings.TrimSpace(arg))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ── Describe ─────────────────────────────────────────────────────────────────

// Describe returns the builder for t's registration table entry.
func (c *Catalog) Describe(t reflect.Type) *TypeBuilder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.types[t]; !ok {
		c.types[t] = &description{}
	}
	return &TypeBuilder{catalog: c, typ: t}
}

// Describe is the generic form of Catalog.Describe.
func Describe[T any](c *Catalog) *TypeBuilder {
	return c.Describe(reflect.TypeFor[T]())
}

// TypeBuilder fills one registration table entry. Invalid input is recorded
// and reported when the type is inspected.
type TypeBuilder struct {
	catalog *Catalog
	typ     reflect.Type
}

// MemberOption annotates a constructor or method.
type MemberOption func(*member)

type member struct {
	annotations []Annotation
	args        map[int][]Annotation
	typeParams  int
}

// With annotates the member itself.
func With(annotations ...Annotation) MemberOption {
	return func(m *member) { m.annotations = append(m.annotations, annotations...) }
}

// Injected marks the member as an injection point.
var Injected = With(Inject{})

// Arg annotates the i-th parameter (receiver excluded).
func Arg(i int, annotations ...Annotation) MemberOption {
	return func(m *member) {
		if m.args == nil {
			m.args = make(map[int][]Annotation)
		}
		m.args[i] = append(m.args[i], annotations...)
	}
}

// TypeParams records that the member declares n type parameters.
func TypeParams(n int) MemberOption {
	return func(m *member) { m.typeParams = n }
}

// Abstract marks the type as not directly constructible, e.g. a base struct
// meant only to be embedded.
func (b *TypeBuilder) Abstract() *TypeBuilder {
	b.update(func(d *description) { d.abstract = true })
	return b
}

// Annotate adds type-level annotations.
func (b *TypeBuilder) Annotate(annotations ...Annotation) *TypeBuilder {
	b.update(func(d *description) { d.annotations = append(d.annotations, annotations...) })
	return b
}

// Constructor declares fn, a func returning *T or (*T, error).
func (b *TypeBuilder) Constructor(fn any, opts ...MemberOption) *TypeBuilder {
	m := newMember(opts)
	v := reflect.ValueOf(fn)
	b.update(func(d *description) {
		ft, err := b.checkFunc(v, 0)
		if err != nil {
			d.fail(err)
			return
		}
		ptr := reflect.PointerTo(b.typ)
		switch {
		case ft.NumOut() == 0 || ft.NumOut() > 2 || ft.Out(0) != ptr:
			d.fail(invalidDescription(b.typ, "constructor must return %s or (%s, error), got %s", ptr, ptr, ft))
			return
		case ft.NumOut() == 2 && ft.Out(1) != errorType:
			d.fail(invalidDescription(b.typ, "constructor second result must be error, got %s", ft.Out(1)))
			return
		}
		params, err := b.params(ft, 0, m)
		if err != nil {
			d.fail(err)
			return
		}
		d.constructors = append(d.constructors, Constructor{Func: v, Params: params, Annotations: m.annotations})
	})
	return b
}

// Method declares a method of the type. fn is its method expression, e.g.
// (*Engine).Install; it may return nothing or an error.
func (b *TypeBuilder) Method(name string, fn any, opts ...MemberOption) *TypeBuilder {
	m := newMember(opts)
	v := reflect.ValueOf(fn)
	b.update(func(d *description) {
		if name == "" {
			d.fail(invalidDescription(b.typ, "method name is empty"))
			return
		}
		ft, err := b.checkFunc(v, 1)
		if err != nil {
			d.fail(err)
			return
		}
		recv := ft.In(0)
		if recv != b.typ && recv != reflect.PointerTo(b.typ) {
			d.fail(invalidDescription(b.typ, "method %s has receiver %s", name, recv))
			return
		}
		if ft.NumOut() > 1 || (ft.NumOut() == 1 && ft.Out(0) != errorType) {
			d.fail(invalidDescription(b.typ, "method %s may only return an error", name))
			return
		}
		params, err := b.params(ft, 1, m)
		if err != nil {
			d.fail(err)
			return
		}
		d.methods = append(d.methods, Method{
			Name:            name,
			Package:         b.typ.PkgPath(),
			Func:            v,
			Params:          params,
			PointerReceiver: recv.Kind() == reflect.Pointer,
			TypeParams:      m.typeParams,
			Annotations:     m.annotations,
		})
	})
	return b
}

func (b *TypeBuilder) update(fn func(d *description)) {
	b.catalog.mu.Lock()
	defer b.catalog.mu.Unlock()
	fn(b.catalog.types[b.typ])
}

func (b *TypeBuilder) checkFunc(v reflect.Value, minIn int) (reflect.Type, error) {
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, invalidDescription(b.typ, "expected a function, got %v", v)
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return nil, invalidDescription(b.typ, "variadic function %s", ft)
	}
	if ft.NumIn() < minIn {
		return nil, invalidDescription(b.typ, "function %s has no receiver", ft)
	}
	return ft, nil
}

func (b *TypeBuilder) params(ft reflect.Type, skip int, m *member) ([]Param, error) {
	params := make([]Param, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		params = append(params, Param{Type: ft.In(i), Annotations: m.args[i-skip]})
	}
	for i := range m.args {
		if i < 0 || i >= len(params) {
			return nil, invalidDescription(b.typ, "argument %d out of range for %s", i, ft)
		}
	}
	return params, nil
}

func newMember(opts []MemberOption) *member {
	m := &member{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (d *description) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// ── Inspector ────────────────────────────────────────────────────────────────

func (c *Catalog) lookup(t reflect.Type) *description {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.types[t]
}

// Abstract implements Inspector. Interfaces are always abstract.
func (c *Catalog) Abstract(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return true
	}
	d := c.lookup(t)
	return d != nil && d.abstract
}

// Annotations implements Inspector.
func (c *Catalog) Annotations(t reflect.Type) []Annotation {
	if d := c.lookup(t); d != nil {
		return append([]Annotation(nil), d.annotations...)
	}
	return nil
}

// Constructors implements Inspector.
func (c *Catalog) Constructors(t reflect.Type) ([]Constructor, error) {
	d := c.lookup(t)
	if d == nil {
		return nil, nil
	}
	if d.err != nil {
		return nil, d.err
	}
	return append([]Constructor(nil), d.constructors...), nil
}

// Levels implements Inspector. The base of a struct is its first embedded,
// exported struct field without an inject tag.
func (c *Catalog) Levels(t reflect.Type) []Level {
	levels := []Level{{Type: t}}
	var path []int
	for cur := t; ; {
		idx, ok := baseField(cur)
		if !ok {
			return levels
		}
		path = append(path, idx)
		cur = cur.Field(idx).Type
		levels = append([]Level{{Type: cur, Path: append([]int(nil), path...)}}, levels...)
	}
}

// Fields implements Inspector.
func (c *Catalog) Fields(level reflect.Type) ([]Field, error) {
	if level.Kind() != reflect.Struct {
		return nil, nil
	}
	base, hasBase := baseField(level)
	var fields []Field
	for i := 0; i < level.NumField(); i++ {
		if hasBase && i == base {
			continue
		}
		sf := level.Field(i)
		field := Field{Name: sf.Name, Index: i, Type: sf.Type, Mutable: sf.IsExported()}
		if tag, ok := sf.Tag.Lookup(InjectTag); ok {
			annotations, err := c.ParseAnnotations(tag)
			if err != nil {
				return nil, err
			}
			field.Annotations = append([]Annotation{Inject{}}, annotations...)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// Methods implements Inspector.
func (c *Catalog) Methods(level reflect.Type) ([]Method, error) {
	d := c.lookup(level)
	if d == nil {
		return nil, nil
	}
	if d.err != nil {
		return nil, d.err
	}
	return append([]Method(nil), d.methods...), nil
}

func baseField(t reflect.Type) (int, bool) {
	if t.Kind() != reflect.Struct {
		return 0, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() || f.Type.Kind() != reflect.Struct {
			continue
		}
		if _, tagged := f.Tag.Lookup(InjectTag); tagged {
			continue
		}
		return i, true
	}
	return 0, false
}
