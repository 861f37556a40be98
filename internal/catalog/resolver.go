package catalog

import (
	"strings"

	"go.uber.org/zap"
)

// Canonical primitive spellings handed to a Catalog by the Resolver.
// Each catalog maps them onto its own type names.
const (
	PrimBool    = "bool"
	PrimByte    = "byte"
	PrimInt16   = "int16"
	PrimInt     = "int"
	PrimInt64   = "int64"
	PrimFloat32 = "float32"
	PrimFloat64 = "float64"
	PrimRune    = "rune"
	PrimString  = "string"
	PrimVoid    = Void
)

// primitiveAliases maps lower-cased spellings to canonical primitives.
var primitiveAliases = map[string]string{
	"boolean": PrimBool,
	"bool":    PrimBool,
	"byte":    PrimByte,
	"short":   PrimInt16,
	"int16":   PrimInt16,
	"int":     PrimInt,
	"long":    PrimInt64,
	"int64":   PrimInt64,
	"float":   PrimFloat32,
	"float32": PrimFloat32,
	"double":  PrimFloat64,
	"float64": PrimFloat64,
	"char":    PrimRune,
	"rune":    PrimRune,
	"string":  PrimString,
	"void":    PrimVoid,
}

// PrimitiveAlias returns the canonical primitive for a spelling such as
// "Long" or "boolean".
func PrimitiveAlias(name string) (string, bool) {
	canonical, ok := primitiveAliases[strings.ToLower(name)]
	return canonical, ok
}

// Resolver normalizes primitive spellings before asking the catalog.
type Resolver struct {
	catalog Catalog
	logger  *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(cat Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{catalog: cat, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog behind the resolver.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// Resolve maps name to a type descriptor. Primitive aliases are matched
// case-insensitively; everything else goes to the catalog verbatim.
func (r *Resolver) Resolve(name string) (TypeDescriptor, bool) {
	if canonical, ok := PrimitiveAlias(name); ok {
		t, found := r.catalog.Resolve(canonical)
		if found {
			t.Primitive = true
		}
		r.logger.Debug("resolved primitive",
			zap.String("name", name),
			zap.String("canonical", canonical),
			zap.String("type", t.Name),
			zap.Bool("found", found))
		return t, found
	}

	t, found := r.catalog.Resolve(name)
	r.logger.Debug("resolved type", zap.String("name", name), zap.Bool("found", found))
	return t, found
}
