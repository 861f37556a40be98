package catalog

import (
	"context"
	"fmt"
	"go/types"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// GoOptions configures LoadGo.
type GoOptions struct {
	// Dir is the directory the go command runs in. Empty means the
	// current directory.
	Dir string

	// Patterns are package patterns such as "./..." or "net/http".
	// Defaults to "./...".
	Patterns []string

	// Tests also loads the test variants of matched packages.
	Tests bool

	// BuildFlags are passed through to the go command (e.g. "-tags=linux").
	BuildFlags []string

	// Env replaces the environment of the go command. Nil inherits it,
	// which is how GOOS/GOARCH variants are probed.
	Env []string

	Logger *zap.Logger
}

// Go is a catalog over type-checked Go packages.
//
// Class names take two forms:
//
//   - "import/path.TypeName" is a named type. Its instance fields are the
//     struct fields (embedded ones included) and its instance methods are
//     the methods declared on it, both in source order.
//   - "import/path" is the package itself. Its static fields are the
//     package-level variables and its static methods the package-level
//     functions, in source order.
//
// Type names may also be prefixed with "*" and "[]", and the universe
// types (int, string, error, any, ...) resolve by their Go spelling.
type Go struct {
	pkgs   map[string]*types.Package
	roots  []*types.Package
	types  map[string]types.Type
	logger *zap.Logger
}

// LoadGo loads packages with go/packages and builds a catalog over them
// and everything they import.
func LoadGo(ctx context.Context, opts GoOptions) (*Go, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedImports |
			packages.NeedDeps,
		Dir:        opts.Dir,
		Env:        opts.Env,
		Tests:      opts.Tests,
		BuildFlags: opts.BuildFlags,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	// Check for package errors
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	roots := make([]*types.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if pkg.Types != nil {
			roots = append(roots, pkg.Types)
		}
	}
	c := NewGo(roots...)
	c.logger = logger
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg.Types != nil {
			c.addPackage(pkg.Types)
		}
	})

	logger.Debug("loaded go packages",
		zap.Strings("patterns", patterns),
		zap.Int("roots", len(roots)),
		zap.Int("packages", len(c.pkgs)))
	return c, nil
}

// NewGo builds a catalog over already type-checked packages and their imports.
func NewGo(roots ...*types.Package) *Go {
	c := &Go{
		pkgs:   make(map[string]*types.Package),
		roots:  roots,
		types:  make(map[string]types.Type),
		logger: zap.NewNop(),
	}
	for _, pkg := range roots {
		c.addPackage(pkg)
	}
	return c
}

func (c *Go) addPackage(pkg *types.Package) {
	if _, ok := c.pkgs[pkg.Path()]; ok {
		return
	}
	c.pkgs[pkg.Path()] = pkg
	for _, imp := range pkg.Imports() {
		c.addPackage(imp)
	}
}

func (c *Go) Resolve(name string) (TypeDescriptor, bool) {
	if name == Void {
		return TypeDescriptor{Name: Void, Primitive: true}, true
	}
	if _, ok := c.pkgs[name]; ok {
		return TypeDescriptor{Name: name}, true
	}
	t := c.lookup(name)
	if t == nil {
		return TypeDescriptor{}, false
	}
	return c.describe(t), true
}

func (c *Go) lookup(name string) types.Type {
	switch {
	case strings.HasPrefix(name, "*"):
		if elem := c.lookup(name[1:]); elem != nil {
			return types.NewPointer(elem)
		}
		return nil
	case strings.HasPrefix(name, "[]"):
		if elem := c.lookup(name[2:]); elem != nil {
			return types.NewSlice(elem)
		}
		return nil
	}

	if t, ok := c.types[name]; ok {
		return t
	}
	if obj, ok := types.Universe.Lookup(name).(*types.TypeName); ok {
		return obj.Type()
	}

	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return nil
	}
	pkg, ok := c.pkgs[name[:dot]]
	if !ok {
		return nil
	}
	if obj, ok := pkg.Scope().Lookup(name[dot+1:]).(*types.TypeName); ok {
		return obj.Type()
	}
	return nil
}

// describe issues the descriptor for t and remembers t under its name.
func (c *Go) describe(t types.Type) TypeDescriptor {
	name := types.TypeString(t, nil)
	if _, ok := c.types[name]; !ok {
		c.types[name] = t
	}
	_, basic := t.(*types.Basic)
	return TypeDescriptor{Name: name, Primitive: basic}
}

func (c *Go) DeclaredFields(t TypeDescriptor) []FieldDescriptor {
	if pkg, ok := c.pkgs[t.Name]; ok {
		var fields []FieldDescriptor
		for _, obj := range scopeObjects(pkg) {
			if v, ok := obj.(*types.Var); ok {
				fields = append(fields, FieldDescriptor{
					Name:   v.Name(),
					Type:   c.describe(v.Type()),
					Static: true,
					Owner:  t,
				})
			}
		}
		return fields
	}

	typ := c.lookup(t.Name)
	if typ == nil {
		return nil
	}
	typ = types.Unalias(typ)
	if ptr, ok := typ.(*types.Pointer); ok {
		typ = types.Unalias(ptr.Elem())
	}
	st, ok := typ.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	fields := make([]FieldDescriptor, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		fields = append(fields, FieldDescriptor{
			Name:  f.Name(),
			Type:  c.describe(f.Type()),
			Owner: t,
		})
	}
	return fields
}

func (c *Go) DeclaredMethods(t TypeDescriptor) []MethodDescriptor {
	if pkg, ok := c.pkgs[t.Name]; ok {
		var methods []MethodDescriptor
		for _, obj := range scopeObjects(pkg) {
			if fn, ok := obj.(*types.Func); ok {
				methods = append(methods, c.method(fn, t))
			}
		}
		return methods
	}

	typ := c.lookup(t.Name)
	if typ == nil {
		return nil
	}
	typ = types.Unalias(typ)
	if ptr, ok := typ.(*types.Pointer); ok {
		typ = types.Unalias(ptr.Elem())
	}

	var methods []MethodDescriptor
	switch typ := typ.(type) {
	case *types.Named:
		if iface, ok := typ.Underlying().(*types.Interface); ok {
			for i := 0; i < iface.NumExplicitMethods(); i++ {
				methods = append(methods, c.method(iface.ExplicitMethod(i), t))
			}
			break
		}
		for i := 0; i < typ.NumMethods(); i++ {
			methods = append(methods, c.method(typ.Method(i), t))
		}
	case *types.Interface:
		for i := 0; i < typ.NumExplicitMethods(); i++ {
			methods = append(methods, c.method(typ.ExplicitMethod(i), t))
		}
	}
	return methods
}

func (c *Go) method(fn *types.Func, owner TypeDescriptor) MethodDescriptor {
	sig := fn.Type().(*types.Signature)
	params := make([]TypeDescriptor, sig.Params().Len())
	for i := 0; i < sig.Params().Len(); i++ {
		params[i] = c.describe(sig.Params().At(i).Type())
	}

	var ret TypeDescriptor
	switch results := sig.Results(); results.Len() {
	case 0:
		ret = TypeDescriptor{Name: Void, Primitive: true}
	case 1:
		ret = c.describe(results.At(0).Type())
	default:
		ret = c.describe(results)
	}

	return MethodDescriptor{
		Name:   fn.Name(),
		Params: params,
		Return: ret,
		Static: sig.Recv() == nil,
		Owner:  owner,
	}
}

// IsAssignable defers to go/types assignability. Result tuples, packages
// and uninstantiated generic types only match themselves.
func (c *Go) IsAssignable(from, to TypeDescriptor) bool {
	if from.Name == to.Name {
		return true
	}
	ft := c.lookup(from.Name)
	tt := c.lookup(to.Name)
	if ft == nil || tt == nil || !comparableType(ft) || !comparableType(tt) {
		return false
	}
	return types.AssignableTo(ft, tt)
}

func comparableType(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Tuple:
		return false
	case *types.Basic:
		return t.Kind() != types.Invalid
	case *types.Named:
		return t.TypeParams().Len() == 0 || t.TypeArgs().Len() > 0
	}
	return true
}

// TypeNames lists the loaded root packages and the named types they declare.
func (c *Go) TypeNames() []string {
	var names []string
	for _, pkg := range c.roots {
		names = append(names, pkg.Path())
		for _, obj := range scopeObjects(pkg) {
			if _, ok := obj.(*types.TypeName); ok {
				names = append(names, pkg.Path()+"."+obj.Name())
			}
		}
	}
	return names
}

// scopeObjects returns the package-level objects in source order.
func scopeObjects(pkg *types.Package) []types.Object {
	scope := pkg.Scope()
	objs := make([]types.Object, 0, scope.Len())
	for _, name := range scope.Names() {
		objs = append(objs, scope.Lookup(name))
	}
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Pos() < objs[j].Pos()
	})
	return objs
}
