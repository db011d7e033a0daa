package container

import (
	"fmt"
	"reflect"
)

// Export marks a module field that binds component C under type I.
type Export[I, C any] struct{}

func (Export[I, C]) exported() (reflect.Type, reflect.Type) {
	return reflect.TypeFor[I](), reflect.TypeFor[C]()
}

type exporter interface {
	exported() (reflect.Type, reflect.Type)
}

var exporterType = reflect.TypeFor[exporter]()

// From binds every exported field of module, a struct or pointer to one:
//
//   - an Export[I, C] field binds component C under I;
//   - a nil *C field binds component C under *C;
//   - any other field binds its value as an instance under the field type.
//
// The inject tag lists qualifiers and, for components, a scope:
//
//	cfg.From(struct {
//	    Conf   *config.Config
//	    Engine *Engine                            `inject:"singleton"`
//	    V8     container.Export[Cylinder, V8Cylinder] `inject:"named=v8"`
//	}{Conf: conf})
//
// Tags need an inspector that implements AnnotationParser, as Catalog does.
func (c *ContextConfig) From(module any) error {
	v := reflect.ValueOf(module)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("container: module must be a struct, got %T", module)
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		annotations, err := c.tagAnnotations(sf)
		if err != nil {
			return fmt.Errorf("container: module field %s: %w", sf.Name, err)
		}

		fv := v.Field(i)
		switch {
		case sf.Type.Implements(exporterType):
			declared, impl := fv.Interface().(exporter).exported()
			err = c.Component(declared, impl, annotations...)
		case sf.Type.Kind() == reflect.Pointer && fv.IsNil():
			err = c.Component(sf.Type, sf.Type.Elem(), annotations...)
		default:
			err = c.Instance(sf.Type, fv.Interface(), annotations...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *ContextConfig) tagAnnotations(sf reflect.StructField) ([]Annotation, error) {
	tag, ok := sf.Tag.Lookup(InjectTag)
	if !ok {
		return nil, nil
	}
	parser, ok := c.inspector.(AnnotationParser)
	if !ok {
		return nil, fmt.Errorf("inspector %T cannot parse tags", c.inspector)
	}
	return parser.ParseAnnotations(tag)
}
