// Copyright (c) 2025 Visvasity LLC

package schema

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Names is the resolved identifier table for one container declaration.
type Names struct {
	// Fields holds the struct field names, parallel to Map.Fields.
	Fields []string

	// Accessors holds the infallible accessor method names, parallel to
	// Map.Fields.
	Accessors []string

	// Dynamic is the open-extension field name. Empty when the map is closed.
	Dynamic string
}

// Method names every generated container reserves; fields and accessors must
// not collide with them.
var contractMethods = []string{"Slot", "Insert", "Len", "Keys"}

// AccessorName returns the infallible accessor method name for a key type
// identifier: the identifier with its first rune upper-cased.
func AccessorName(typeIdent string) string {
	r, n := utf8.DecodeRuneInString(typeIdent)
	return string(unicode.ToUpper(r)) + typeIdent[n:]
}

// Resolve assigns every field of m a struct field name and an accessor
// method name, and names the open-extension slot. Unnamed fields become
// slot0, slot1, ... skipping names the user already took; the extension slot
// tries "dynamic" first, then numbered variants. Resolve is pure and
// deterministic, so regenerated output is byte-stable.
func Resolve(m *Map) (*Names, error) {
	reserved := make(map[string]string) // name -> what claimed it
	for _, name := range contractMethods {
		reserved[name] = "a container method"
	}
	for _, it := range m.Iterable {
		if prev, ok := reserved[it.Method]; ok {
			return nil, fmt.Errorf("map %q: iteration method %q collides with %s", m.Name, it.Method, prev)
		}
		reserved[it.Method] = "an iteration method"
	}

	names := &Names{
		Fields:    make([]string, len(m.Fields)),
		Accessors: make([]string, len(m.Fields)),
	}

	// User-chosen field names claim their slots first.
	for i, f := range m.Fields {
		if f.Unnamed() {
			continue
		}
		if prev, ok := reserved[f.Name]; ok {
			return nil, fmt.Errorf("map %q: field name %q collides with %s", m.Name, f.Name, prev)
		}
		reserved[f.Name] = fmt.Sprintf("field %d", i)
		names.Fields[i] = f.Name
	}

	next := 0
	for i, f := range m.Fields {
		if !f.Unnamed() {
			continue
		}
		name := fmt.Sprintf("slot%d", next)
		for reserved[name] != "" {
			next++
			name = fmt.Sprintf("slot%d", next)
		}
		reserved[name] = fmt.Sprintf("field %d", i)
		names.Fields[i] = name
		next++
	}

	for i, f := range m.Fields {
		acc := AccessorName(f.Type)
		if prev, ok := reserved[acc]; ok {
			return nil, fmt.Errorf("map %q: accessor %q for key type %q collides with %s", m.Name, acc, f.Type, prev)
		}
		reserved[acc] = fmt.Sprintf("the accessor for field %d", i)
		names.Accessors[i] = acc
	}

	if m.Dynamic {
		name := "dynamic"
		for i := 0; reserved[name] != ""; i++ {
			name = fmt.Sprintf("dynamic%d", i)
		}
		names.Dynamic = name
	}
	return names, nil
}
