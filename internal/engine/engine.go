// Package engine executes parsed CHECK and FIND queries against a catalog.
package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/arg"
	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/config"
	"github.com/funvibe/typeprobe/internal/diagnostics"
)

// TypeResolver maps query names to catalog types.
type TypeResolver interface {
	Resolve(name string) (catalog.TypeDescriptor, bool)
	Catalog() catalog.Catalog
}

// Engine runs one query at a time. Results are handed to emit as soon as
// they are found, so a fatal error part way through leaves earlier
// results delivered.
type Engine struct {
	resolver TypeResolver
	emit     func(Result) error
	logger   *zap.Logger
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(resolver TypeResolver, emit func(Result) error, opts ...Option) *Engine {
	e := &Engine{resolver: resolver, emit: emit, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the query in args. A returned error is fatal for the run;
// absent classes and members are results, not errors.
func (e *Engine) Execute(args arg.Arg) error {
	e.logger.Debug("executing query", zap.Stringer("args", args))

	command, err := textAt(args, 0)
	if err != nil {
		return err
	}
	switch command {
	case config.CheckCommand:
		return e.check(args)
	case config.FindCommand:
		return e.find(args)
	}
	return diagnostics.NewError(diagnostics.ErrQ002, command, "command", command)
}

func (e *Engine) check(args arg.Arg) error {
	element, err := textAt(args, 1)
	if err != nil {
		return err
	}

	var static bool
	switch element {
	case config.ClassElement:
		return e.checkClasses(args)
	case config.InstanceFieldElement, config.InstanceMethodElement:
	case config.StaticFieldElement, config.StaticMethodElement:
		static = true
	default:
		return diagnostics.NewError(diagnostics.ErrQ002, element, "element type", element)
	}

	parentName, err := textAt(args, 2)
	if err != nil {
		return err
	}
	parent, ok := e.resolver.Resolve(parentName)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrQ001, parentName, "parent", parentName)
	}
	params, err := e.resolveAll(args.AtOr(4, arg.NewList()), "param")
	if err != nil {
		return err
	}
	group, err := args.At(3)
	if err != nil {
		return err
	}
	names, err := Names(group)
	if err != nil {
		return err
	}

	cat := e.resolver.Catalog()
	for _, name := range names {
		var r Result
		if element == config.InstanceFieldElement || element == config.StaticFieldElement {
			r = checkField(cat, parent, name, static)
		} else {
			r = checkMethod(cat, parent, name, static, params)
		}
		if err := e.emit(r); err != nil {
			return err
		}
	}
	return nil
}

// checkClasses reads the names at position 3 when the element form
// CHECK CLASS parent (names) is used, and at position 2 otherwise.
func (e *Engine) checkClasses(args arg.Arg) error {
	pos := 2
	if args.Len() > 3 {
		pos = 3
	}
	group, err := args.At(pos)
	if err != nil {
		return err
	}
	names, err := Names(group)
	if err != nil {
		return err
	}
	for _, name := range names {
		_, ok := e.resolver.Resolve(name)
		if err := e.emit(ClassExistence{Name: name, Exists: ok}); err != nil {
			return err
		}
	}
	return nil
}

// checkField looks at the first declared field called name.
func checkField(cat catalog.Catalog, parent catalog.TypeDescriptor, name string, static bool) FieldExistence {
	r := FieldExistence{Owner: parent, Name: name, Static: static, Status: FieldMissing}
	for _, f := range cat.DeclaredFields(parent) {
		if f.Name != name {
			continue
		}
		if f.Static == static {
			r.Status = FieldExists
		} else {
			r.Status = FieldWrongKind
		}
		break
	}
	return r
}

// checkMethod matches the exact signature when params are given, otherwise
// the first method with the name and static flag.
func checkMethod(cat catalog.Catalog, parent catalog.TypeDescriptor, name string, static bool, params []catalog.TypeDescriptor) MethodExistence {
	r := MethodExistence{Owner: parent, Name: name, Static: static, Params: params}
	for _, m := range cat.DeclaredMethods(parent) {
		if m.Name != name {
			continue
		}
		if len(params) > 0 {
			if !m.SameParams(params) {
				continue
			}
			if m.Static == static {
				r.Exists, r.Params = true, m.Params
			}
			break
		}
		if m.Static == static {
			r.Exists, r.Params = true, m.Params
			break
		}
	}
	return r
}

func (e *Engine) find(args arg.Arg) error {
	group, err := args.At(1)
	if err != nil {
		return err
	}
	kinds, err := Names(group)
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		return diagnostics.NewError(diagnostics.ErrQ003, group.String(), "empty find type list")
	}
	for _, kind := range kinds {
		switch kind {
		case config.InstanceFieldElement, config.StaticFieldElement,
			config.InstanceMethodElement, config.StaticMethodElement:
		default:
			return diagnostics.NewError(diagnostics.ErrQ002, kind, "find type", kind)
		}
	}

	ops, err := operands(args.Items()[2:])
	if err != nil {
		return err
	}
	if len(ops) < 1 {
		return diagnostics.NewError(diagnostics.ErrQ003, args.String(), "missing parent classes")
	}
	if len(ops) < 2 {
		return diagnostics.NewError(diagnostics.ErrQ003, args.String(), "missing target classes")
	}

	// Everything resolves before the first result goes out.
	parents, err := e.resolveAll(ops[0], "parent")
	if err != nil {
		return err
	}
	targets, err := e.resolveAll(ops[1], "target")
	if err != nil {
		return err
	}
	var valid []catalog.TypeDescriptor
	if len(ops) > 2 {
		if valid, err = e.resolveAll(ops[2], "param"); err != nil {
			return err
		}
	}

	cat := e.resolver.Catalog()
	for _, kind := range kinds {
		static := kind == config.StaticFieldElement || kind == config.StaticMethodElement
		fields := kind == config.InstanceFieldElement || kind == config.StaticFieldElement
		for _, parent := range parents {
			for _, target := range targets {
				var err error
				if fields {
					err = e.findFields(cat, parent, target, static)
				} else {
					err = e.findMethods(cat, parent, target, static, valid)
				}
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Engine) findFields(cat catalog.Catalog, parent, target catalog.TypeDescriptor, static bool) error {
	for _, f := range cat.DeclaredFields(parent) {
		if f.Static != static || !cat.IsAssignable(f.Type, target) {
			continue
		}
		if err := e.emit(FoundField{Parent: parent, Field: f}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) findMethods(cat catalog.Catalog, parent, target catalog.TypeDescriptor, static bool, valid []catalog.TypeDescriptor) error {
	for _, m := range cat.DeclaredMethods(parent) {
		if m.Static != static || !cat.IsAssignable(m.Return, target) || !paramsWithin(cat, m.Params, valid) {
			continue
		}
		if err := e.emit(FoundMethod{Parent: parent, Method: m}); err != nil {
			return err
		}
	}
	return nil
}

// paramsWithin reports whether every param is assignable to one of valid.
// An empty valid set accepts everything.
func paramsWithin(cat catalog.Catalog, params, valid []catalog.TypeDescriptor) bool {
	if len(valid) == 0 {
		return true
	}
	for _, p := range params {
		ok := false
		for _, v := range valid {
			if cat.IsAssignable(p, v) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (e *Engine) resolveAll(group arg.Arg, role string) ([]catalog.TypeDescriptor, error) {
	names, err := Names(group)
	if err != nil {
		return nil, err
	}
	types := make([]catalog.TypeDescriptor, 0, len(names))
	for _, name := range names {
		t, ok := e.resolver.Resolve(name)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrQ001, name, role, name)
		}
		types = append(types, t)
	}
	return types, nil
}

// Names returns the leaf texts of a group. A single leaf is a group of one
// and empty leaves are dropped, so "()" is an empty group.
func Names(group arg.Arg) ([]string, error) {
	var names []string
	for _, item := range group.Items() {
		text, err := item.Text()
		if err != nil {
			return nil, err
		}
		if text != "" {
			names = append(names, text)
		}
	}
	return names, nil
}

func textAt(args arg.Arg, i int) (string, error) {
	a, err := args.At(i)
	if err != nil {
		return "", err
	}
	return a.Text()
}

var findLabels = []string{config.ParentLabel, config.TargetLabel, config.ParamsLabel}

// operands strips the optional parent:, target: and params: labels from
// the groups following the FIND type list. A label may be a token of its
// own or prefix the first name of its group.
func operands(items []arg.Arg) ([]arg.Arg, error) {
	var out []arg.Arg
	for i := 0; i < len(items); i++ {
		item := items[i]
		pos := len(out)

		if text, err := item.Text(); err == nil && isLabel(text) {
			if pos >= len(findLabels) || text != findLabels[pos] {
				return nil, misplacedLabel(text)
			}
			// A label with no group of its own, as parent:() parses, is an
			// empty group.
			if i+1 == len(items) || labelled(items[i+1]) {
				out = append(out, arg.NewList())
			}
			continue
		}

		stripped, label := stripLabel(item)
		if label != "" && (pos >= len(findLabels) || label != findLabels[pos]) {
			return nil, misplacedLabel(label)
		}
		out = append(out, stripped)
	}
	return out, nil
}

// labelled reports whether a starts with any FIND label.
func labelled(a arg.Arg) bool {
	_, label := stripLabel(a)
	return label != ""
}

func isLabel(text string) bool {
	for _, l := range findLabels {
		if text == l {
			return true
		}
	}
	return false
}

func stripLabel(group arg.Arg) (arg.Arg, string) {
	items := group.Items()
	if len(items) == 0 {
		return group, ""
	}
	first, err := items[0].Text()
	if err != nil {
		return group, ""
	}
	for _, l := range findLabels {
		if !strings.HasPrefix(first, l) {
			continue
		}
		if group.IsLeaf() {
			return arg.NewLeaf(first[len(l):]), l
		}
		rest := append([]arg.Arg{arg.NewLeaf(first[len(l):])}, items[1:]...)
		return arg.NewList(rest...), l
	}
	return group, ""
}

func misplacedLabel(label string) error {
	return diagnostics.NewError(diagnostics.ErrQ003, label, "misplaced label "+label)
}
