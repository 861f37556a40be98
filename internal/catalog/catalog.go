// Package catalog provides the universes of types that queries run against.
//
// A Catalog answers four questions: does a name denote a type, which fields
// and methods does a type declare (in a stable declaration order), and may a
// value of one type be used where another is expected. Back ends:
//
//   - Go packages loaded from source via go/packages (LoadGo)
//   - Go types registered at run time (NewRuntime)
//   - Protocol Buffers schemas, from files or gRPC server reflection (LoadProto, LoadGRPC)
//   - Static snapshots in YAML or SQLite (LoadIndex, LoadSQLite)
//
// Lookups never signal absence with an error: a missing type is a false
// second return value and a type without members returns an empty slice.
package catalog

import "strings"

// TypeDescriptor identifies a type. Two descriptors denote the same type
// iff their names are equal.
type TypeDescriptor struct {
	Name      string
	Primitive bool
}

func (t TypeDescriptor) String() string { return t.Name }

// FieldDescriptor describes a declared field.
type FieldDescriptor struct {
	Name   string
	Type   TypeDescriptor
	Static bool
	Owner  TypeDescriptor
}

// MethodDescriptor describes a declared method.
type MethodDescriptor struct {
	Name   string
	Params []TypeDescriptor
	Return TypeDescriptor
	Static bool
	Owner  TypeDescriptor
}

// ParamNames renders the parameter list as "a, b, c".
func (m MethodDescriptor) ParamNames() string {
	return JoinNames(m.Params)
}

// SameParams reports whether the method's ordered parameter list equals params.
func (m MethodDescriptor) SameParams(params []TypeDescriptor) bool {
	if len(m.Params) != len(params) {
		return false
	}
	for i := range params {
		if m.Params[i].Name != params[i].Name {
			return false
		}
	}
	return true
}

// Catalog is the source of truth for what types exist.
type Catalog interface {
	// Resolve looks a type up by its canonical name.
	Resolve(name string) (TypeDescriptor, bool)

	// DeclaredFields lists the fields declared directly on t, in declaration order.
	DeclaredFields(t TypeDescriptor) []FieldDescriptor

	// DeclaredMethods lists the methods declared directly on t, in declaration order.
	DeclaredMethods(t TypeDescriptor) []MethodDescriptor

	// IsAssignable reports whether a value of type from may be used where
	// a value of type to is expected.
	IsAssignable(from, to TypeDescriptor) bool
}

// Enumerator is implemented by catalogs that can list the names they know.
type Enumerator interface {
	TypeNames() []string
}

// Void is the return type of methods that return nothing.
const Void = "void"

// JoinNames renders descriptors as a comma separated list.
func JoinNames(types []TypeDescriptor) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
