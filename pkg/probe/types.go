package probe

import (
	"context"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/report"
)

// Catalog types aliases
type Catalog = catalog.Catalog
type Enumerator = catalog.Enumerator
type TypeDescriptor = catalog.TypeDescriptor
type FieldDescriptor = catalog.FieldDescriptor
type MethodDescriptor = catalog.MethodDescriptor
type Index = catalog.Index
type IndexType = catalog.IndexType
type IndexField = catalog.IndexField
type IndexMethod = catalog.IndexMethod

// Loaders for catalogs a host can Use next to its registered types.

func LoadIndex(path string) (Catalog, error) {
	m, err := catalog.LoadIndex(path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func LoadSQLite(ctx context.Context, path string) (Catalog, error) {
	m, err := catalog.LoadSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadGo type-checks the packages matching patterns, run from dir.
func LoadGo(ctx context.Context, dir string, patterns ...string) (Catalog, error) {
	g, err := catalog.LoadGo(ctx, catalog.GoOptions{Dir: dir, Patterns: patterns})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LoadProto parses .proto files named relative to importPaths.
func LoadProto(files []string, importPaths ...string) (Catalog, error) {
	p, err := catalog.LoadProto(catalog.ProtoOptions{Files: files, ImportPaths: importPaths})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewIndexCatalog builds a catalog from an index held in memory.
func NewIndexCatalog(idx *Index) (Catalog, error) {
	m, err := catalog.NewMemory(idx)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Color modes for WithColor
type ColorMode = report.ColorMode

const (
	ColorAuto   = report.ColorAuto
	ColorAlways = report.ColorAlways
	ColorNever  = report.ColorNever
)
