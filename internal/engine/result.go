package engine

import "github.com/funvibe/typeprobe/internal/catalog"

// Result is one finding of a query run. Each result becomes one report line.
type Result interface {
	result()
}

// ClassExistence answers CHECK CLASS for one name.
type ClassExistence struct {
	Name   string
	Exists bool
}

type FieldStatus int

const (
	FieldMissing FieldStatus = iota
	FieldExists
	// FieldWrongKind means a field with the name exists but its static
	// flag differs from the one asked for.
	FieldWrongKind
)

// FieldExistence answers CHECK INSTANCE_FIELD / STATIC_FIELD for one name.
type FieldExistence struct {
	Owner  catalog.TypeDescriptor
	Name   string
	Static bool
	Status FieldStatus
}

// MethodExistence answers CHECK INSTANCE_METHOD / STATIC_METHOD for one name.
// Params are the found method's parameters when it exists, otherwise the
// requested ones.
type MethodExistence struct {
	Owner  catalog.TypeDescriptor
	Name   string
	Static bool
	Params []catalog.TypeDescriptor
	Exists bool
}

// FoundField is a FIND match on a field of Parent.
type FoundField struct {
	Parent catalog.TypeDescriptor
	Field  catalog.FieldDescriptor
}

// FoundMethod is a FIND match on a method of Parent.
type FoundMethod struct {
	Parent catalog.TypeDescriptor
	Method catalog.MethodDescriptor
}

func (ClassExistence) result()  {}
func (FieldExistence) result()  {}
func (MethodExistence) result() {}
func (FoundField) result()      {}
func (FoundMethod) result()     {}
