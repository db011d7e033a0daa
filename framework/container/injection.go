package container

import (
	"errors"
	"fmt"
	"reflect"
)

// InjectionProvider constructs a concrete type through its injection points:
// constructor, then for every embedding level from base to derived, the
// level's inject fields followed by its inject methods.
//
// All metadata is inspected once, when the provider is built.
type InjectionProvider struct {
	component    reflect.Type
	constructor  injectable
	levels       []levelPlan
	dependencies []Ref
}

type injectable struct {
	fn       reflect.Value
	required []Ref
}

type fieldPlan struct {
	index []int
	ref   Ref
}

type methodPlan struct {
	name    string
	pointer bool
	injectable
}

type levelPlan struct {
	path    []int
	fields  []fieldPlan
	methods []methodPlan
}

// NewInjectionProvider inspects component and returns a provider for it, or
// the configuration error that makes it unconstructible.
func NewInjectionProvider(component reflect.Type, inspector Inspector) (*InjectionProvider, error) {
	if inspector.Abstract(component) {
		return nil, abstractComponent(component)
	}

	p := &InjectionProvider{component: component}

	ctor, err := injectConstructor(component, inspector)
	if err != nil {
		return nil, err
	}
	p.constructor = ctor
	p.dependencies = append(p.dependencies, ctor.required...)

	levels := inspector.Levels(component)
	fields, err := injectFields(component, inspector, levels)
	if err != nil {
		return nil, err
	}
	methods, err := injectMethods(component, inspector, levels)
	if err != nil {
		return nil, err
	}

	for i, level := range levels {
		plan := levelPlan{path: level.Path, fields: fields[i], methods: methods[i]}
		for _, f := range plan.fields {
			p.dependencies = append(p.dependencies, f.ref)
		}
		p.levels = append(p.levels, plan)
	}
	for _, plan := range p.levels {
		for _, m := range plan.methods {
			p.dependencies = append(p.dependencies, m.required...)
		}
	}
	return p, nil
}

// Dependencies returns every ref the component needs, in injection order.
// A ref appears once per injection point that requires it.
func (p *InjectionProvider) Dependencies() []Ref { return cloneRefs(p.dependencies) }

// Component returns the concrete type the provider constructs.
func (p *InjectionProvider) Component() reflect.Type { return p.component }

// Get constructs a new instance. Construction is all or nothing: on failure
// no partially injected instance escapes.
func (p *InjectionProvider) Get(ctx Context) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance, err = nil, &ConstructionError{Component: p.component, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	value, err := p.construct(ctx)
	if err != nil {
		return nil, err
	}

	target := value.Elem()
	for _, level := range p.levels {
		for _, f := range level.fields {
			dep, err := p.resolve(ctx, f.ref)
			if err != nil {
				return nil, err
			}
			target.FieldByIndex(f.index).Set(dep)
		}
		if len(level.methods) == 0 {
			continue
		}
		receiver := at(target, level.path)
		for _, m := range level.methods {
			if err := p.invoke(ctx, receiver, m); err != nil {
				return nil, err
			}
		}
	}
	return value.Interface(), nil
}

func (p *InjectionProvider) construct(ctx Context) (reflect.Value, error) {
	if !p.constructor.fn.IsValid() {
		return reflect.New(p.component), nil
	}
	args, err := p.resolveAll(ctx, p.constructor.required)
	if err != nil {
		return reflect.Value{}, err
	}
	out := p.constructor.fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, &ConstructionError{Component: p.component, Err: out[1].Interface().(error)}
	}
	if out[0].IsNil() {
		return reflect.Value{}, &ConstructionError{Component: p.component, Err: errors.New("constructor returned nil")}
	}
	return out[0], nil
}

func (p *InjectionProvider) invoke(ctx Context, receiver reflect.Value, m methodPlan) error {
	args, err := p.resolveAll(ctx, m.required)
	if err != nil {
		return err
	}
	if m.pointer {
		receiver = receiver.Addr()
	}
	out := m.fn.Call(append([]reflect.Value{receiver}, args...))
	if len(out) == 1 && !out[0].IsNil() {
		return &ConstructionError{Component: p.component, Err: fmt.Errorf("%s: %w", m.name, out[0].Interface().(error))}
	}
	return nil
}

func (p *InjectionProvider) resolveAll(ctx Context, refs []Ref) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(refs))
	for i, ref := range refs {
		v, err := p.resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (p *InjectionProvider) resolve(ctx Context, ref Ref) (reflect.Value, error) {
	v, ok, err := ctx.Get(ref)
	if err != nil {
		return reflect.Value{}, &ConstructionError{Component: p.component, Err: err}
	}
	if !ok {
		return reflect.Value{}, &ConstructionError{Component: p.component, Err: dependencyNotFound(ref, nil)}
	}
	if v == nil {
		return reflect.Zero(ref.Type()), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(ref.Type()) {
		return reflect.Value{}, &ConstructionError{Component: p.component,
			Err: fmt.Errorf("%s resolved to %s", ref, rv.Type())}
	}
	return rv, nil
}

// ── Build-time inspection ────────────────────────────────────────────────────

func injectConstructor(component reflect.Type, inspector Inspector) (injectable, error) {
	ctors, err := inspector.Constructors(component)
	if err != nil {
		return injectable{}, err
	}

	var injected []Constructor
	for _, c := range ctors {
		if hasKind(c.Annotations, KindInject) {
			injected = append(injected, c)
		}
	}

	var chosen *Constructor
	switch {
	case len(injected) > 1:
		return injectable{}, ambiguousConstructors(component, len(injected))
	case len(injected) == 1:
		chosen = &injected[0]
	default:
		for i := range ctors {
			if len(ctors[i].Params) == 0 {
				chosen = &ctors[i]
				break
			}
		}
		if chosen == nil {
			// A struct without declared constructors is built from its zero value.
			if len(ctors) == 0 && component.Kind() == reflect.Struct {
				return injectable{}, nil
			}
			return injectable{}, noUsableConstructor(component)
		}
	}

	required, err := paramRefs(component, "constructor", chosen.Params)
	if err != nil {
		return injectable{}, err
	}
	return injectable{fn: chosen.Func, required: required}, nil
}

func injectFields(component reflect.Type, inspector Inspector, levels []Level) ([][]fieldPlan, error) {
	plans := make([][]fieldPlan, len(levels))
	var immutable []string
	for i, level := range levels {
		fields, err := inspector.Fields(level.Type)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			if !hasKind(f.Annotations, KindInject) {
				continue
			}
			if !f.Mutable {
				immutable = append(immutable, level.Type.Name()+"."+f.Name)
				continue
			}
			q, err := qualifierOf(component, "field "+f.Name, f.Annotations)
			if err != nil {
				return nil, err
			}
			index := append(append([]int(nil), level.Path...), f.Index)
			plans[i] = append(plans[i], fieldPlan{index: index, ref: NewRef(f.Type, q...)})
		}
	}
	if len(immutable) > 0 {
		return nil, immutableInjectFields(component, immutable)
	}
	return plans, nil
}

// injectMethods keeps an inject method only when no more derived level
// declares a method overriding it. An override that is itself annotated
// takes the overridden method's place at its own level; one that is not
// annotated removes it from injection.
func injectMethods(component reflect.Type, inspector Inspector, levels []Level) ([][]methodPlan, error) {
	declared := make([][]Method, len(levels))
	for i, level := range levels {
		methods, err := inspector.Methods(level.Type)
		if err != nil {
			return nil, err
		}
		declared[i] = methods
	}

	plans := make([][]methodPlan, len(levels))
	var generic []string
	for i := range levels {
		for _, m := range declared[i] {
			if !hasKind(m.Annotations, KindInject) || overridden(m, declared[i+1:]) {
				continue
			}
			if m.TypeParams > 0 {
				generic = append(generic, levels[i].Type.Name()+"."+m.Name)
				continue
			}
			required, err := paramRefs(component, "method "+m.Name, m.Params)
			if err != nil {
				return nil, err
			}
			plans[i] = append(plans[i], methodPlan{
				name:       m.Name,
				pointer:    m.PointerReceiver,
				injectable: injectable{fn: m.Func, required: required},
			})
		}
	}
	if len(generic) > 0 {
		return nil, genericInjectMethods(component, generic)
	}
	return plans, nil
}

func overridden(m Method, derived [][]Method) bool {
	for _, level := range derived {
		for _, o := range level {
			if o.Overrides(m) {
				return true
			}
		}
	}
	return false
}

func paramRefs(component reflect.Type, where string, params []Param) ([]Ref, error) {
	refs := make([]Ref, len(params))
	for i, param := range params {
		q, err := qualifierOf(component, fmt.Sprintf("%s parameter %d", where, i), param.Annotations)
		if err != nil {
			return nil, err
		}
		refs[i] = NewRef(param.Type, q...)
	}
	return refs, nil
}

func qualifierOf(component reflect.Type, where string, annotations []Annotation) ([]Annotation, error) {
	qualifiers := ofKind(annotations, KindQualifier)
	if len(qualifiers) > 1 {
		return nil, ambiguousQualifiers(component, where, qualifiers)
	}
	for _, q := range qualifiers {
		if !isComparable(q) {
			return nil, illegalQualifier(component, q)
		}
	}
	return qualifiers, nil
}

// at returns the embedded level reached by path.
func at(v reflect.Value, path []int) reflect.Value {
	if len(path) == 0 {
		return v
	}
	return v.FieldByIndex(path)
}
