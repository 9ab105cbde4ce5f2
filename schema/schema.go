// Copyright (c) 2025 Visvasity LLC

// Package schema defines the parsed container declarations consumed by the
// generator, loads them from a YAML manifest, and resolves the field and
// method names of each declared container.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one declared entry of a container.
type Field struct {
	// Name is the struct field name. Empty or "_" declares an unnamed field;
	// the resolver assigns it a slot name. Casing of a user-chosen name
	// controls exposure, as usual in Go.
	Name string `yaml:"name"`

	// Type is the key type: an identifier declared in (or predeclared and
	// visible from) the target package. Lookups for this type land on this
	// slot.
	Type string `yaml:"type"`

	// Value optionally redirects storage: the slot is keyed by Type but holds
	// a value of this Go type expression. Redirected slots are read through
	// their accessor or typemap.GetKeyed and cannot be inserted over.
	Value string `yaml:"value"`

	// Init is a Go expression evaluated in the target package to produce the
	// slot's initial value. Absent means the zero value.
	Init string `yaml:"init"`

	// Doc is forwarded verbatim as the generated field's doc comment.
	Doc string `yaml:"doc"`
}

// Unnamed reports whether the field needs a resolver-assigned name.
func (f *Field) Unnamed() bool {
	return f.Name == "" || f.Name == "_"
}

// Iterable declares one capability iteration for a container.
type Iterable struct {
	// Interface is the capability: an interface type identifier in the
	// target package. Every fixed slot's stored type must satisfy it.
	Interface string `yaml:"interface"`

	// Method is the generated iteration method name. Defaults to the
	// interface name with an "s" appended.
	Method string `yaml:"method"`
}

// Map is one container declaration.
type Map struct {
	Name     string      `yaml:"name"`
	Doc      string      `yaml:"doc"`
	Dynamic  bool        `yaml:"dynamic"`
	Iterable []*Iterable `yaml:"iterable"`
	Fields   []*Field    `yaml:"fields"`
}

// File is a parsed manifest: the target package pattern plus the container
// declarations to generate into it.
type File struct {
	Package string `yaml:"package"`
	Maps    []*Map `yaml:"maps"`
}

// Load reads and validates a manifest file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates manifest data. Decoding is strict: unknown
// keys are authoring errors, not silently dropped options.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, err
	}
	if f.Package == "" {
		f.Package = "."
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if len(f.Maps) == 0 {
		return fmt.Errorf("manifest declares no maps")
	}
	// Generated file names are the lowercased map name, so names that differ
	// only by case would overwrite each other's output.
	seen := make(map[string]string)
	for _, m := range f.Maps {
		if err := m.validate(); err != nil {
			return err
		}
		lower := strings.ToLower(m.Name)
		if prev, ok := seen[lower]; ok {
			if prev == m.Name {
				return fmt.Errorf("map %q is declared twice", m.Name)
			}
			return fmt.Errorf("maps %q and %q would generate the same output file", prev, m.Name)
		}
		seen[lower] = m.Name
	}
	return nil
}

func (m *Map) validate() error {
	if !token.IsIdentifier(m.Name) {
		return fmt.Errorf("map name %q is not a valid identifier", m.Name)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("map %q declares no fields", m.Name)
	}
	for i, it := range m.Iterable {
		if !token.IsIdentifier(it.Interface) {
			return fmt.Errorf("map %q: iterable %d: interface %q is not an identifier in the target package", m.Name, i, it.Interface)
		}
		if it.Method == "" {
			it.Method = it.Interface + "s"
		}
		if !token.IsIdentifier(it.Method) {
			return fmt.Errorf("map %q: iterable %q: method name %q is not a valid identifier", m.Name, it.Interface, it.Method)
		}
	}
	for i, fd := range m.Fields {
		if fd.Type == "" {
			return fmt.Errorf("map %q: field %d has no type", m.Name, i)
		}
		if !token.IsIdentifier(fd.Type) {
			return fmt.Errorf("map %q: field %d: key type %q must be a type identifier visible in the target package", m.Name, i, fd.Type)
		}
		if !fd.Unnamed() && !token.IsIdentifier(fd.Name) {
			return fmt.Errorf("map %q: field name %q is not a valid identifier", m.Name, fd.Name)
		}
	}
	return nil
}
