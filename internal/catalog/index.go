package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Index is a serializable snapshot of a type universe. It is what the
// YAML and SQLite back ends store, and what Export produces.
type Index struct {
	// Source describes where the snapshot was taken from (free text).
	Source string `yaml:"source,omitempty"`

	// Types lists every known type, in declaration order.
	Types []IndexType `yaml:"types"`
}

// IndexType is one type of an Index.
type IndexType struct {
	Name      string `yaml:"name"`
	Primitive bool   `yaml:"primitive,omitempty"`

	// Supertypes lists the names this type is assignable to, besides itself.
	Supertypes []string `yaml:"supertypes,omitempty"`

	Fields  []IndexField  `yaml:"fields,omitempty"`
	Methods []IndexMethod `yaml:"methods,omitempty"`
}

// IndexField is a declared field of an IndexType.
type IndexField struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
}

// IndexMethod is a declared method of an IndexType.
type IndexMethod struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Return string   `yaml:"return,omitempty"`
	Static bool     `yaml:"static,omitempty"`
}

// LoadIndex reads a YAML index and builds a memory catalog from it.
func LoadIndex(path string) (*Memory, error) {
	idx, err := ReadIndex(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(idx)
}

// ReadIndex reads and validates a YAML index file.
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", path, err)
	}
	return ParseIndex(data, path)
}

// ParseIndex parses YAML index content.
// The path argument is used only for error messages.
func ParseIndex(data []byte, path string) (*Index, error) {
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := idx.validate(path); err != nil {
		return nil, err
	}
	return &idx, nil
}

// WriteIndex stores idx as YAML at path.
func WriteIndex(path string, idx *Index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing index %s: %w", path, err)
	}
	return nil
}

// validate checks the index for structural errors.
func (idx *Index) validate(path string) error {
	seen := make(map[string]bool, len(idx.Types))
	for i, t := range idx.Types {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%s: types[%d]: name is required", path, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%s: types[%d]: duplicate type %q", path, i, t.Name)
		}
		seen[t.Name] = true

		for j, f := range t.Fields {
			if f.Name == "" {
				return fmt.Errorf("%s: types[%d].fields[%d] (%s): name is required", path, i, j, t.Name)
			}
			if f.Type == "" {
				return fmt.Errorf("%s: types[%d].fields[%d] (%s.%s): type is required", path, i, j, t.Name, f.Name)
			}
		}
		for j, m := range t.Methods {
			if m.Name == "" {
				return fmt.Errorf("%s: types[%d].methods[%d] (%s): name is required", path, i, j, t.Name)
			}
			for k, p := range m.Params {
				if p == "" {
					return fmt.Errorf("%s: types[%d].methods[%d].params[%d] (%s.%s): empty type",
						path, i, j, k, t.Name, m.Name)
				}
			}
		}
	}
	return nil
}

// Export snapshots the named types of cat into an Index. Types referenced by
// members are included without members so that assignability between them
// survives the round trip.
func Export(cat Catalog, names []string) (*Index, error) {
	var (
		order   []TypeDescriptor
		byName  = make(map[string]int)
		members = make(map[string]bool)
	)
	add := func(t TypeDescriptor) int {
		if i, ok := byName[t.Name]; ok {
			return i
		}
		byName[t.Name] = len(order)
		order = append(order, t)
		return byName[t.Name]
	}

	idx := &Index{}
	for _, name := range names {
		t, ok := cat.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("exporting %s: type not found", name)
		}
		add(t)
		members[t.Name] = true
	}

	idx.Types = make([]IndexType, 0, len(order))
	for i := 0; i < len(order); i++ {
		t := order[i]
		it := IndexType{Name: t.Name, Primitive: t.Primitive}
		if members[t.Name] {
			for _, f := range cat.DeclaredFields(t) {
				add(f.Type)
				it.Fields = append(it.Fields, IndexField{Name: f.Name, Type: f.Type.Name, Static: f.Static})
			}
			for _, m := range cat.DeclaredMethods(t) {
				im := IndexMethod{Name: m.Name, Return: m.Return.Name, Static: m.Static}
				add(m.Return)
				for _, p := range m.Params {
					add(p)
					im.Params = append(im.Params, p.Name)
				}
				it.Methods = append(it.Methods, im)
			}
		}
		idx.Types = append(idx.Types, it)
	}

	for i := range idx.Types {
		from := order[i]
		for _, to := range order {
			if to.Name == from.Name {
				continue
			}
			if cat.IsAssignable(from, to) {
				idx.Types[i].Supertypes = append(idx.Types[i].Supertypes, to.Name)
			}
		}
	}
	return idx, nil
}
