// Copyright (c) 2025 Visvasity LLC

package gen

import (
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/visvasity/typemapgen/schema"
)

// Slot is one fixed storage location of a planned container.
type Slot struct {
	Spec *schema.Field

	FieldName string // resolved struct field name
	Accessor  string // infallible accessor method name

	KeyExpr string     // key type expression, as written in the manifest
	Key     types.Type // resolved key type

	StoredExpr string     // stored type expression; equals KeyExpr unless redirected
	Stored     types.Type // resolved stored type

	Init string // initializer expression; empty means the zero value
	Doc  string
}

// Redirected reports whether the slot stores a different type than its key.
func (s *Slot) Redirected() bool {
	return s.Spec.Value != ""
}

// Capability is one interface the planned container can be iterated as.
type Capability struct {
	Name   string // interface identifier in the target package
	Iface  *types.Interface
	Method string // generated iteration method name
}

// Layout is the planned shape of one container: every fixed slot with its
// resolved name and type, the open-extension slot if any, and the capability
// iterations. It feeds every emitter.
type Layout struct {
	Name    string
	Doc     string
	Dynamic bool
	DynName string // open-extension field name; empty when closed

	Slots []*Slot
	Iters []*Capability
}

// LoadPackage loads the target package for type resolution, rooted at dir.
func LoadPackage(dir, pattern string) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedDeps | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package matches %q", pattern)
	}
	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("package %q has no type information", pattern)
	}
	return pkg, nil
}

// Plan resolves a container declaration against the loaded package and runs
// every authoring-time check. On error no layout is produced; generation for
// the declaration must halt.
func Plan(pkg *packages.Package, m *schema.Map) (*Layout, error) {
	type slotTypes struct {
		key, stored types.Type
		storedExpr  string
	}

	// Key identity is checked before names are resolved: two fields keyed by
	// one type also collide on their accessor names, and the duplicate key is
	// the real defect to report. typeutil.Map identifies keys by type, so
	// aliases of one type are caught too.
	var keys typeutil.Map
	resolvedTypes := make([]slotTypes, len(m.Fields))
	for i, f := range m.Fields {
		key, err := evalType(pkg, f.Type)
		if err != nil {
			return nil, fmt.Errorf("map %q: field %d: key type: %w", m.Name, i, err)
		}
		if prev := keys.At(key); prev != nil {
			return nil, fmt.Errorf("map %q: key type %q is declared for fields %d and %d; duplicate keys make dispatch ambiguous",
				m.Name, f.Type, prev.(int), i)
		}
		keys.Set(key, i)

		stored, storedExpr := key, f.Type
		if f.Value != "" {
			if stored, err = evalType(pkg, f.Value); err != nil {
				return nil, fmt.Errorf("map %q: field %d: value type: %w", m.Name, i, err)
			}
			storedExpr = f.Value
		}

		if f.Init != "" {
			if err := checkInit(pkg, f.Init, stored); err != nil {
				return nil, fmt.Errorf("map %q: field %d: %w", m.Name, i, err)
			}
		}
		resolvedTypes[i] = slotTypes{key: key, stored: stored, storedExpr: storedExpr}
	}

	names, err := schema.Resolve(m)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Name:    m.Name,
		Doc:     m.Doc,
		Dynamic: m.Dynamic,
		DynName: names.Dynamic,
	}
	for i, f := range m.Fields {
		l.Slots = append(l.Slots, &Slot{
			Spec:       f,
			FieldName:  names.Fields[i],
			Accessor:   names.Accessors[i],
			KeyExpr:    f.Type,
			Key:        resolvedTypes[i].key,
			StoredExpr: resolvedTypes[i].storedExpr,
			Stored:     resolvedTypes[i].stored,
			Init:       f.Init,
			Doc:        f.Doc,
		})
	}

	for _, it := range m.Iterable {
		iface, err := lookupInterface(pkg, it.Interface)
		if err != nil {
			return nil, fmt.Errorf("map %q: iterable %q: %w", m.Name, it.Interface, err)
		}
		for i, s := range l.Slots {
			// Iteration views the slot through its address, so the pointer
			// type is what must satisfy the capability.
			if !types.Implements(types.NewPointer(s.Stored), iface) {
				return nil, fmt.Errorf("map %q: field %d: *%s does not implement %s, so the map cannot be iterated as %s",
					m.Name, i, s.StoredExpr, it.Interface, it.Interface)
			}
		}
		l.Iters = append(l.Iters, &Capability{
			Name:   it.Interface,
			Iface:  iface,
			Method: it.Method,
		})
	}
	return l, nil
}

func evalType(pkg *packages.Package, expr string) (types.Type, error) {
	tv, err := types.Eval(pkg.Fset, pkg.Types, token.NoPos, expr)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q in package %s: %w", expr, pkg.Types.Path(), err)
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%q is not a type in package %s", expr, pkg.Types.Path())
	}
	return tv.Type, nil
}

func checkInit(pkg *packages.Package, expr string, stored types.Type) error {
	tv, err := types.Eval(pkg.Fset, pkg.Types, token.NoPos, expr)
	if err != nil {
		return fmt.Errorf("initializer %q: %w", expr, err)
	}
	if !tv.IsValue() {
		return fmt.Errorf("initializer %q is not a value expression", expr)
	}
	if !types.AssignableTo(tv.Type, stored) {
		return fmt.Errorf("initializer %q has type %s, not assignable to %s", expr, tv.Type, stored)
	}
	return nil
}

func lookupInterface(pkg *packages.Package, name string) (*types.Interface, error) {
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("%q is not declared in package %s", name, pkg.Types.Path())
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%q is not a type", name)
	}
	iface, ok := tn.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("%q is not an interface type", name)
	}
	return iface, nil
}
