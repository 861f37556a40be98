package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/xreflect"
)

// Runtime is a catalog over Go types registered by the host program.
//
// Registered types keep the name they were registered under; every other
// type is named by reflect (uint8, *time.Time, []string). Instance methods
// are the pointer method set, which reflect lists sorted by name and
// restricted to exported methods. Runtime types have no static members.
type Runtime struct {
	registry *xreflect.Types
	byName   map[string]reflect.Type
	names    map[reflect.Type]string
	order    []string
}

// NewRuntime wraps registry. A nil registry starts empty.
func NewRuntime(registry *xreflect.Types) *Runtime {
	if registry == nil {
		registry = xreflect.NewTypes()
	}
	return &Runtime{
		registry: registry,
		byName:   make(map[string]reflect.Type),
		names:    make(map[reflect.Type]string),
	}
}

// Register adds the type of v under name. v may be a value, a nil pointer
// to an interface or struct type (registering the pointee), or a reflect.Type.
func (r *Runtime) Register(name string, v any) error {
	rt, ok := v.(reflect.Type)
	if !ok {
		rt = reflect.TypeOf(v)
		if rt == nil {
			return fmt.Errorf("registering %s: nil value has no type", name)
		}
		if rt.Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil() {
			rt = rt.Elem()
		}
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("registering %s: already registered", name)
	}
	opts := []xreflect.Option{xreflect.WithReflectType(rt)}
	simple := name
	if i := strings.LastIndex(name, "."); i > 0 {
		simple = name[i+1:]
		opts = append(opts, xreflect.WithPackage(name[:i]))
	}
	if err := r.registry.Register(simple, opts...); err != nil {
		return fmt.Errorf("registering %s: %w", name, err)
	}
	r.byName[name] = rt
	if _, ok := r.names[rt]; !ok {
		r.names[rt] = name
	}
	r.order = append(r.order, name)
	return nil
}

var runtimeBasics = map[string]reflect.Type{
	PrimBool:    reflect.TypeOf(false),
	PrimByte:    reflect.TypeOf(byte(0)),
	PrimInt16:   reflect.TypeOf(int16(0)),
	PrimInt:     reflect.TypeOf(0),
	PrimInt64:   reflect.TypeOf(int64(0)),
	PrimFloat32: reflect.TypeOf(float32(0)),
	PrimFloat64: reflect.TypeOf(float64(0)),
	PrimRune:    reflect.TypeOf(rune(0)),
	PrimString:  reflect.TypeOf(""),
	"error":     reflect.TypeOf((*error)(nil)).Elem(),
	"any":       reflect.TypeOf((*any)(nil)).Elem(),
}

func (r *Runtime) Resolve(name string) (TypeDescriptor, bool) {
	if name == Void {
		return TypeDescriptor{Name: Void, Primitive: true}, true
	}
	if rt := r.lookup(name); rt != nil {
		return r.describe(rt), true
	}
	return TypeDescriptor{}, false
}

func (r *Runtime) lookup(name string) reflect.Type {
	if rt, ok := r.byName[name]; ok {
		return rt
	}
	if rt, err := r.registry.Lookup(name); err == nil && rt != nil {
		return rt
	}
	if rt, ok := runtimeBasics[name]; ok {
		return rt
	}
	return nil
}

func (r *Runtime) describe(rt reflect.Type) TypeDescriptor {
	name, ok := r.names[rt]
	if !ok {
		name = rt.String()
		if _, seen := r.byName[name]; !seen {
			r.byName[name] = rt
		}
	}
	return TypeDescriptor{Name: name, Primitive: isBasicKind(rt)}
}

func isBasicKind(rt reflect.Type) bool {
	if rt.PkgPath() != "" {
		return false
	}
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func (r *Runtime) DeclaredFields(t TypeDescriptor) []FieldDescriptor {
	rt := r.lookup(t.Name)
	if rt == nil {
		return nil
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]FieldDescriptor, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		fields = append(fields, FieldDescriptor{
			Name:  f.Name,
			Type:  r.describe(f.Type),
			Owner: t,
		})
	}
	return fields
}

func (r *Runtime) DeclaredMethods(t TypeDescriptor) []MethodDescriptor {
	rt := r.lookup(t.Name)
	if rt == nil {
		return nil
	}

	// Interface methods carry no receiver; concrete ones do.
	skip := 0
	switch rt.Kind() {
	case reflect.Interface:
	case reflect.Pointer:
		skip = 1
	default:
		rt = reflect.PointerTo(rt)
		skip = 1
	}

	methods := make([]MethodDescriptor, 0, rt.NumMethod())
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		params := make([]TypeDescriptor, 0, m.Type.NumIn())
		for j := skip; j < m.Type.NumIn(); j++ {
			params = append(params, r.describe(m.Type.In(j)))
		}
		methods = append(methods, MethodDescriptor{
			Name:   m.Name,
			Params: params,
			Return: r.result(m.Type),
			Owner:  t,
		})
	}
	return methods
}

func (r *Runtime) result(ft reflect.Type) TypeDescriptor {
	switch ft.NumOut() {
	case 0:
		return TypeDescriptor{Name: Void, Primitive: true}
	case 1:
		return r.describe(ft.Out(0))
	}
	outs := make([]TypeDescriptor, ft.NumOut())
	for i := range outs {
		outs[i] = r.describe(ft.Out(i))
	}
	return TypeDescriptor{Name: "(" + JoinNames(outs) + ")"}
}

func (r *Runtime) IsAssignable(from, to TypeDescriptor) bool {
	if from.Name == to.Name {
		return true
	}
	ft := r.lookup(from.Name)
	tt := r.lookup(to.Name)
	if ft == nil || tt == nil {
		return false
	}
	return ft.AssignableTo(tt)
}

// TypeNames lists registered names in registration order.
func (r *Runtime) TypeNames() []string {
	return append([]string(nil), r.order...)
}
