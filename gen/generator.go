// Copyright (c) 2025 Visvasity LLC

// Package gen plans container layouts against a loaded Go package and emits
// one generated source file per container declaration.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"log"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Generator accumulates generated source, one buffer per container, along
// with the import set each buffer needs.
type Generator struct {
	pkg     *packages.Package
	pkgName string

	bufferMap map[string]*bytes.Buffer

	// importsMap holds a mapping from a package path to the container names
	// whose generated files must import it, with the import name to use.
	importsMap map[string]map[string]string
}

// NewGenerator returns a generator emitting into the loaded package.
// Generated files always join the declaring package, so initializer
// expressions and unexported slot types stay reachable.
func NewGenerator(pkg *packages.Package) *Generator {
	return &Generator{
		pkg:        pkg,
		pkgName:    pkg.Types.Name(),
		bufferMap:  make(map[string]*bytes.Buffer),
		importsMap: make(map[string]map[string]string),
	}
}

func (g *Generator) getBuffer(name string) *bytes.Buffer {
	if b, ok := g.bufferMap[name]; ok {
		return b
	}
	b := new(bytes.Buffer)
	g.bufferMap[name] = b
	return b
}

func (g *Generator) addImport(name string, importName, packagePath string) {
	vmap, ok := g.importsMap[packagePath]
	if !ok {
		vmap = make(map[string]string)
		g.importsMap[packagePath] = vmap
	}
	vmap[name] = importName
}

// P prints one generated line into the named container's buffer.
func (g *Generator) P(name string, v ...any) {
	buf := g.getBuffer(name)
	for _, x := range v {
		fmt.Fprint(buf, x)
	}
	fmt.Fprintln(buf)
}

// Maps returns the container names with generated output, in sorted order so
// callers write files deterministically.
func (g *Generator) Maps() []string {
	names := make([]string, 0, len(g.bufferMap))
	for name := range g.bufferMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OutputName returns the generated file name for a container.
func (g *Generator) OutputName(name string) string {
	return strings.ToLower(name) + ".typemap.go"
}

// GetSource returns the formatted generated file for a container.
func (g *Generator) GetSource(name string) []byte {
	buf := g.getSourceWithImports(name)

	src, err := format.Source(buf.Bytes())
	if err != nil {
		// Should never happen, but can arise when developing this code.
		// The user can compile the output to see the error.
		log.Printf("warning: internal error: invalid Go generated: %s", err)
		log.Printf("warning: compile the package to analyze the error")
		return buf.Bytes()
	}
	return src
}

func (g *Generator) getImports(name string) [][2]string {
	var imports [][2]string
	for pkgPath, vmap := range g.importsMap {
		imp, ok := vmap[name]
		if !ok {
			continue
		}
		imports = append(imports, [2]string{imp, pkgPath})
	}
	// Standard library imports first, then the rest, each group by path.
	slices.SortFunc(imports, func(a, b [2]string) int {
		as, bs := strings.Contains(a[1], "."), strings.Contains(b[1], ".")
		if as != bs {
			if as {
				return 1
			}
			return -1
		}
		return strings.Compare(a[1], b[1])
	})
	return imports
}

func (g *Generator) getSourceWithImports(name string) *bytes.Buffer {
	buf := new(bytes.Buffer)

	fmt.Fprintln(buf, "// Code generated by github.com/visvasity/typemapgen. DO NOT EDIT.")
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "package", g.pkgName)
	fmt.Fprintln(buf)

	imports := g.getImports(name)
	if len(imports) != 0 {
		fmt.Fprintln(buf, "import (")
		stdlib := true
		for _, imp := range imports {
			if stdlib && strings.Contains(imp[1], ".") {
				stdlib = false
				fmt.Fprintln(buf)
			}
			if len(imp[0]) == 0 {
				fmt.Fprintf(buf, "%q\n", imp[1])
			} else {
				fmt.Fprintf(buf, "%s %q\n", imp[0], imp[1])
			}
		}
		fmt.Fprintln(buf, ")")
	}
	fmt.Fprintln(buf)

	io.Copy(buf, g.getBuffer(name))
	return buf
}
