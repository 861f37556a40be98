package catalog

import "fmt"

// Memory is a catalog held entirely in memory, built from an Index.
// Assignability is the reflexive, transitive closure of declared supertypes.
type Memory struct {
	types map[string]*IndexType
	order []string
}

// NewMemory builds a catalog from idx. The index is not copied and must
// not be modified afterwards.
func NewMemory(idx *Index) (*Memory, error) {
	m := &Memory{types: make(map[string]*IndexType, len(idx.Types))}
	for i := range idx.Types {
		t := &idx.Types[i]
		if _, dup := m.types[t.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", t.Name)
		}
		m.types[t.Name] = t
		m.order = append(m.order, t.Name)
	}
	return m, nil
}

// Resolve finds a declared type. The canonical primitives always resolve,
// declared or not.
func (m *Memory) Resolve(name string) (TypeDescriptor, bool) {
	if _, ok := m.types[name]; ok {
		return m.describe(name), true
	}
	if _, ok := primitiveNames[name]; ok {
		return TypeDescriptor{Name: name, Primitive: true}, true
	}
	return TypeDescriptor{}, false
}

func (m *Memory) DeclaredFields(t TypeDescriptor) []FieldDescriptor {
	it, ok := m.types[t.Name]
	if !ok {
		return nil
	}
	owner := m.describe(t.Name)
	fields := make([]FieldDescriptor, 0, len(it.Fields))
	for _, f := range it.Fields {
		fields = append(fields, FieldDescriptor{
			Name:   f.Name,
			Type:   m.describe(f.Type),
			Static: f.Static,
			Owner:  owner,
		})
	}
	return fields
}

func (m *Memory) DeclaredMethods(t TypeDescriptor) []MethodDescriptor {
	it, ok := m.types[t.Name]
	if !ok {
		return nil
	}
	owner := m.describe(t.Name)
	methods := make([]MethodDescriptor, 0, len(it.Methods))
	for _, im := range it.Methods {
		params := make([]TypeDescriptor, len(im.Params))
		for i, p := range im.Params {
			params[i] = m.describe(p)
		}
		ret := im.Return
		if ret == "" {
			ret = Void
		}
		methods = append(methods, MethodDescriptor{
			Name:   im.Name,
			Params: params,
			Return: m.describe(ret),
			Static: im.Static,
			Owner:  owner,
		})
	}
	return methods
}

// IsAssignable walks declared supertypes breadth first.
func (m *Memory) IsAssignable(from, to TypeDescriptor) bool {
	if from.Name == to.Name {
		return true
	}
	seen := map[string]bool{from.Name: true}
	queue := []string{from.Name}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		it, ok := m.types[name]
		if !ok {
			continue
		}
		for _, super := range it.Supertypes {
			if super == to.Name {
				return true
			}
			if !seen[super] {
				seen[super] = true
				queue = append(queue, super)
			}
		}
	}
	return false
}

// TypeNames lists declared types in index order.
func (m *Memory) TypeNames() []string {
	return append([]string(nil), m.order...)
}

func (m *Memory) describe(name string) TypeDescriptor {
	if it, ok := m.types[name]; ok {
		return TypeDescriptor{Name: name, Primitive: it.Primitive}
	}
	_, prim := primitiveNames[name]
	return TypeDescriptor{Name: name, Primitive: prim}
}

var primitiveNames = map[string]struct{}{
	PrimBool: {}, PrimByte: {}, PrimInt16: {}, PrimInt: {}, PrimInt64: {},
	PrimFloat32: {}, PrimFloat64: {}, PrimRune: {}, PrimString: {}, PrimVoid: {},
}
