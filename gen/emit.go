// Copyright (c) 2025 Visvasity LLC

package gen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/visvasity/typemapgen/schema"
)

const runtimePkg = "github.com/visvasity/typemapgen/typemap"

// Generate emits the full container source for a planned layout into the
// container's buffer.
func (g *Generator) Generate(l *Layout) error {
	name := l.Name

	g.addImport(name, "", "reflect")
	g.addImport(name, "", runtimePkg)
	if !l.Dynamic || g.hasRedirected(l) {
		g.addImport(name, "", "fmt")
	}
	if len(l.Iters) != 0 {
		g.addImport(name, "", "iter")
	}

	g.emitType(l)
	g.emitKeys(l)
	g.emitNew(l)
	g.emitAccessors(l)
	g.emitKeysAndLen(l)
	g.emitSlot(l)
	g.emitInsert(l)
	for _, it := range l.Iters {
		g.emitIter(l, it)
	}
	return nil
}

func (g *Generator) hasRedirected(l *Layout) bool {
	for _, s := range l.Slots {
		if s.Redirected() {
			return true
		}
	}
	return false
}

func (g *Generator) keysVar(l *Layout) string {
	r, n := utf8.DecodeRuneInString(l.Name)
	return string(unicode.ToLower(r)) + l.Name[n:] + "Keys"
}

func (g *Generator) newName(l *Layout) string {
	if r, _ := utf8.DecodeRuneInString(l.Name); unicode.IsUpper(r) {
		return "New" + l.Name
	}
	return "new" + schema.AccessorName(l.Name)
}

func (g *Generator) docLines(name, doc string) {
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		g.P(name, "// ", line)
	}
}

func (g *Generator) emitType(l *Layout) {
	name := l.Name

	g.P(name)
	if l.Doc != "" {
		g.docLines(name, l.Doc)
	} else if l.Dynamic {
		g.P(name, "// ", name, " holds one value per declared key type, plus an open")
		g.P(name, "// extension for types inserted at runtime.")
	} else {
		g.P(name, "// ", name, " holds one value per declared key type.")
	}
	g.P(name, "type ", name, " struct {")
	for _, s := range l.Slots {
		if s.Doc != "" {
			g.docLines(name, s.Doc)
		}
		g.P(name, s.FieldName, " ", s.StoredExpr)
	}
	if l.Dynamic {
		g.P(name, l.DynName, " map[reflect.Type]*typemap.Cell")
	}
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitKeys(l *Layout) {
	name := l.Name

	g.P(name)
	g.P(name, "// ", g.keysVar(l), " lists the fixed slot key types in declaration order.")
	g.P(name, "var ", g.keysVar(l), " = [...]reflect.Type{")
	for _, s := range l.Slots {
		g.P(name, "reflect.TypeFor[", s.KeyExpr, "](),")
	}
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitNew(l *Layout) {
	name := l.Name

	g.P(name)
	g.P(name, "// ", g.newName(l), " returns a ", name, " with every fixed slot set to its")
	if l.Dynamic {
		g.P(name, "// declared initial value and an empty open extension.")
	} else {
		g.P(name, "// declared initial value.")
	}
	g.P(name, "func ", g.newName(l), "() *", name, " {")
	g.P(name, "  m := new(", name, ")")
	for _, s := range l.Slots {
		if s.Init != "" {
			g.P(name, "  m.", s.FieldName, " = ", s.Init)
		}
	}
	if l.Dynamic {
		g.P(name, "  m.", l.DynName, " = make(map[reflect.Type]*typemap.Cell)")
	}
	g.P(name, "  return m")
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitAccessors(l *Layout) {
	name := l.Name

	for _, s := range l.Slots {
		g.P(name)
		g.P(name, "// ", s.Accessor, " returns the fixed slot keyed by ", s.KeyExpr, ".")
		g.P(name, "func (m *", name, ") ", s.Accessor, "() *", s.StoredExpr, " {")
		g.P(name, "  return &m.", s.FieldName)
		g.P(name, "}")
		g.P(name)
	}
}

func (g *Generator) emitKeysAndLen(l *Layout) {
	name := l.Name

	g.P(name)
	g.P(name, "// Keys returns the fixed slot key types in declaration order.")
	g.P(name, "func (m *", name, ") Keys() []reflect.Type {")
	g.P(name, "  return ", g.keysVar(l), "[:]")
	g.P(name, "}")
	g.P(name)

	g.P(name)
	g.P(name, "// Len returns the number of stored values.")
	g.P(name, "func (m *", name, ") Len() int {")
	if l.Dynamic {
		g.P(name, "  return ", len(l.Slots), " + len(m.", l.DynName, ")")
	} else {
		g.P(name, "  return ", len(l.Slots))
	}
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitSlot(l *Layout) {
	name := l.Name

	g.P(name)
	g.P(name, "// Slot returns the address of the value stored under key. Fixed slots are")
	if l.Dynamic {
		g.P(name, "// checked in declaration order before the open extension.")
	} else {
		g.P(name, "// checked in declaration order.")
	}
	g.P(name, "func (m *", name, ") Slot(key reflect.Type) (any, bool) {")
	g.P(name, "  switch key {")
	for i, s := range l.Slots {
		g.P(name, "  case ", g.keysVar(l), "[", i, "]:")
		g.P(name, "    return &m.", s.FieldName, ", true")
	}
	g.P(name, "  }")
	if l.Dynamic {
		g.P(name, "  if c, ok := m.", l.DynName, "[key]; ok {")
		g.P(name, "    return c.Pointer(), true")
		g.P(name, "  }")
	}
	g.P(name, "  return nil, false")
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitInsert(l *Layout) {
	name := l.Name

	g.P(name)
	g.P(name, "// Insert stores value under its concrete type and returns the value that was")
	g.P(name, "// stored under that type before the call. Fixed slots always report a")
	if l.Dynamic {
		g.P(name, "// previous value; open-extension inserts return nil the first time a type")
		g.P(name, "// is seen.")
	} else {
		g.P(name, "// previous value. Inserting a type with no declared slot fails with")
		g.P(name, "// typemap.ErrUnknownType and leaves the container unchanged.")
	}
	g.P(name, "func (m *", name, ") Insert(value any) (any, error) {")
	g.P(name, "  key := reflect.TypeOf(value)")
	g.P(name, "  if key == nil {")
	g.P(name, "    return nil, typemap.ErrUnknownType")
	g.P(name, "  }")
	g.P(name, "  switch key {")
	for i, s := range l.Slots {
		g.P(name, "  case ", g.keysVar(l), "[", i, "]:")
		if s.Redirected() {
			g.P(name, "    // Keyed slot: the stored value's type differs from the key.")
			g.P(name, "    return nil, fmt.Errorf(\"insert %v: keyed slot is not insertable: %w\", key, typemap.ErrUnknownType)")
			continue
		}
		g.P(name, "    prev := m.", s.FieldName)
		g.P(name, "    m.", s.FieldName, " = value.(", s.StoredExpr, ")")
		g.P(name, "    return prev, nil")
	}
	g.P(name, "  }")
	if !l.Dynamic {
		g.P(name, "  return nil, fmt.Errorf(\"insert %v: %w\", key, typemap.ErrUnknownType)")
		g.P(name, "}")
		g.P(name)
		return
	}
	g.P(name, "  cell := typemap.NewCell(value)")
	for _, it := range l.Iters {
		g.P(name, "  if v, ok := cell.Pointer().(", it.Name, "); ok {")
		g.P(name, "    cell.Bind(", fmt.Sprintf("%q", it.Name), ", v)")
		g.P(name, "  }")
	}
	g.P(name, "  prev, ok := m.", l.DynName, "[key]")
	g.P(name, "  m.", l.DynName, "[key] = cell")
	g.P(name, "  if !ok {")
	g.P(name, "    return nil, nil")
	g.P(name, "  }")
	g.P(name, "  return prev.Value(), nil")
	g.P(name, "}")
	g.P(name)
}

func (g *Generator) emitIter(l *Layout, it *Capability) {
	name := l.Name

	g.P(name)
	g.P(name, "// ", it.Method, " yields every stored value viewable as ", it.Name, ", fixed slots")
	if l.Dynamic {
		g.P(name, "// first in declaration order, then open-extension entries in map order.")
	} else {
		g.P(name, "// in declaration order.")
	}
	g.P(name, "// Each call starts a fresh single-use pass; no other mutation of the")
	g.P(name, "// container may happen while a pass is live.")
	g.P(name, "func (m *", name, ") ", it.Method, "() iter.Seq[", it.Name, "] {")
	g.P(name, "  return func(yield func(", it.Name, ") bool) {")
	for _, s := range l.Slots {
		g.P(name, "    if !yield(&m.", s.FieldName, ") {")
		g.P(name, "      return")
		g.P(name, "    }")
	}
	if l.Dynamic {
		g.P(name, "    for _, c := range m.", l.DynName, " {")
		g.P(name, "      if v, ok := c.View(", fmt.Sprintf("%q", it.Name), "); ok {")
		g.P(name, "        if !yield(v.(", it.Name, ")) {")
		g.P(name, "          return")
		g.P(name, "        }")
		g.P(name, "      }")
		g.P(name, "    }")
	}
	g.P(name, "  }")
	g.P(name, "}")
	g.P(name)
}
