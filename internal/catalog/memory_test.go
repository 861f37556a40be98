package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryResolve(t *testing.T) {
	m := zooCatalog()

	tests := []struct {
		name      string
		found     bool
		primitive bool
	}{
		{"zoo.Dog", true, false},
		{"zoo.Cat", false, false},
		{"int", true, true},
		{"void", true, true},
		{"Dog", false, false},
	}
	for _, tt := range tests {
		got, ok := m.Resolve(tt.name)
		if ok != tt.found {
			t.Errorf("Resolve(%q) found = %v, want %v", tt.name, ok, tt.found)
			continue
		}
		if ok && got.Primitive != tt.primitive {
			t.Errorf("Resolve(%q).Primitive = %v, want %v", tt.name, got.Primitive, tt.primitive)
		}
	}
}

func TestMemoryDeclarationOrder(t *testing.T) {
	m := zooCatalog()
	dog, _ := m.Resolve("zoo.Dog")

	var fields []string
	for _, f := range m.DeclaredFields(dog) {
		fields = append(fields, f.Name)
	}
	if diff := cmp.Diff([]string{"legs", "DEFAULT", "ROOT"}, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	methods := m.DeclaredMethods(dog)
	if len(methods) != 3 {
		t.Fatalf("got %d methods, want 3", len(methods))
	}
	if methods[0].Return.Name != Void {
		t.Errorf("bark(int) returns %q, want void", methods[0].Return.Name)
	}
	if got := methods[1].ParamNames(); got != "string" {
		t.Errorf("bark(string) params = %q", got)
	}
	if !methods[2].Static || methods[2].Owner.Name != "zoo.Dog" {
		t.Errorf("of = %+v, want static member of zoo.Dog", methods[2])
	}
}

func TestMemoryMembersOfUnknownType(t *testing.T) {
	m := zooCatalog()
	if got := m.DeclaredFields(td("int")); len(got) != 0 {
		t.Errorf("int fields = %v, want none", got)
	}
	if got := m.DeclaredMethods(td("zoo.Cat")); len(got) != 0 {
		t.Errorf("zoo.Cat methods = %v, want none", got)
	}
}

func TestMemoryIsAssignable(t *testing.T) {
	m := zooCatalog()

	tests := []struct {
		from, to string
		want     bool
	}{
		{"zoo.Dog", "zoo.Dog", true},
		{"zoo.Dog", "zoo.Animal", true},
		{"zoo.Puppy", "zoo.Animal", true},
		{"zoo.Animal", "zoo.Dog", false},
		{"int", "int64", false},
		{"int", "int", true},
	}
	for _, tt := range tests {
		if got := m.IsAssignable(td(tt.from), td(tt.to)); got != tt.want {
			t.Errorf("IsAssignable(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMemorySupertypeCycle(t *testing.T) {
	m, err := NewMemory(&Index{Types: []IndexType{
		{Name: "A", Supertypes: []string{"B"}},
		{Name: "B", Supertypes: []string{"A"}},
	}})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if m.IsAssignable(td("A"), td("C")) {
		t.Error("A should not be assignable to C")
	}
	if !m.IsAssignable(td("B"), td("A")) {
		t.Error("B should be assignable to A")
	}
}

func TestNewMemoryDuplicate(t *testing.T) {
	_, err := NewMemory(&Index{Types: []IndexType{{Name: "A"}, {Name: "A"}}})
	if err == nil {
		t.Fatal("expected duplicate type error")
	}
}

func TestResolverAliases(t *testing.T) {
	r := NewResolver(zooCatalog())

	tests := []struct {
		name string
		want string
	}{
		{"Long", "int64"},
		{"boolean", "bool"},
		{"DOUBLE", "float64"},
		{"char", "rune"},
		{"short", "int16"},
		{"Void", "void"},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.name)
		if !ok {
			t.Errorf("Resolve(%q) not found", tt.name)
			continue
		}
		if got.Name != tt.want || !got.Primitive {
			t.Errorf("Resolve(%q) = %+v, want primitive %s", tt.name, got, tt.want)
		}
	}

	if _, ok := r.Resolve("zoo.Kangaroo"); ok {
		t.Error("unknown class resolved")
	}
	if got, ok := r.Resolve("zoo.Dog"); !ok || got.Primitive {
		t.Errorf("Resolve(zoo.Dog) = %+v, %v", got, ok)
	}
}
