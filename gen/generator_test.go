// Copyright (c) 2025 Visvasity LLC

package gen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/visvasity/typemapgen/schema"
)

func TestGenerate(t *testing.T) {
	pkg := loadExample(t)

	l, err := Plan(pkg, pluginMapSchema())
	require.NoError(t, err)

	g := NewGenerator(pkg)
	require.NoError(t, g.Generate(l))

	src := string(g.GetSource("PluginMap"))

	// The emitted file must be parseable Go; GetSource only returns
	// unformatted output when formatting failed.
	_, err = parser.ParseFile(token.NewFileSet(), "pluginmap.typemap.go", src, parser.ParseComments)
	require.NoError(t, err)

	for _, want := range []string{
		"// Code generated by github.com/visvasity/typemapgen. DO NOT EDIT.",
		"package plugins",
		"type PluginMap struct {",
		"dynamic  map[reflect.Type]*typemap.Cell",
		"var pluginMapKeys = [...]reflect.Type{",
		"reflect.TypeFor[GraphicsPlugin](),",
		"func NewPluginMap() *PluginMap {",
		"m.slot1 = NewNetworkingPlugin(100)",
		"func (m *PluginMap) SoundPlugin() *SoundPlugin {",
		"func (m *PluginMap) Slot(key reflect.Type) (any, bool) {",
		"func (m *PluginMap) Insert(value any) (any, error) {",
		"func (m *PluginMap) Plugins() iter.Seq[Plugin] {",
		"cell.Bind(\"Plugin\", v)",
	} {
		require.Contains(t, src, want)
	}
}

func TestGenerateClosed(t *testing.T) {
	pkg := loadExample(t)

	l, err := Plan(pkg, &schema.Map{
		Name: "SessionMap",
		Fields: []*schema.Field{
			{Type: "SessionName", Name: "Name"},
			{Type: "StartTime"},
			{Type: "MetricsKey", Value: "map[string]uint64", Init: "newMetrics()"},
		},
	})
	require.NoError(t, err)

	g := NewGenerator(pkg)
	require.NoError(t, g.Generate(l))

	src := string(g.GetSource("SessionMap"))
	_, err = parser.ParseFile(token.NewFileSet(), "sessionmap.typemap.go", src, parser.ParseComments)
	require.NoError(t, err)

	require.NotContains(t, src, "iter.Seq")
	require.NotContains(t, src, "m.dynamic")
	require.Contains(t, src, "func (m *SessionMap) MetricsKey() *map[string]uint64 {")
	require.Contains(t, src, "keyed slot is not insertable")
	require.Contains(t, src, `"fmt"`)
}

func TestGenerateStable(t *testing.T) {
	pkg := loadExample(t)

	emit := func() string {
		l, err := Plan(pkg, pluginMapSchema())
		require.NoError(t, err)
		g := NewGenerator(pkg)
		require.NoError(t, g.Generate(l))
		return string(g.GetSource("PluginMap"))
	}

	// Same schema in, byte-identical source out.
	require.Equal(t, emit(), emit())
}

func TestMapsSorted(t *testing.T) {
	pkg := loadExample(t)
	g := NewGenerator(pkg)

	for _, name := range []string{"Zebra", "Alpha", "Mango"} {
		g.P(name, "// placeholder")
	}
	require.Equal(t, []string{"Alpha", "Mango", "Zebra"}, g.Maps())
}

func TestOutputName(t *testing.T) {
	pkg := loadExample(t)
	g := NewGenerator(pkg)
	require.Equal(t, "pluginmap.typemap.go", g.OutputName("PluginMap"))
}

func TestGeneratedMatchesCheckedIn(t *testing.T) {
	// The example package carries the generator's output; a drifted emitter
	// should fail here, not in code review.
	pkg := loadExample(t)
	require.NotEmpty(t, pkg.GoFiles)
	dir := filepath.Dir(pkg.GoFiles[0])

	f, err := schema.Load(filepath.Join(dir, "typemaps.yaml"))
	require.NoError(t, err)

	g := NewGenerator(pkg)
	for _, m := range f.Maps {
		l, err := Plan(pkg, m)
		require.NoError(t, err)
		require.NoError(t, g.Generate(l))
	}

	for _, name := range g.Maps() {
		want, err := os.ReadFile(filepath.Join(dir, g.OutputName(name)))
		require.NoError(t, err)
		require.Equal(t, string(want), string(g.GetSource(name)), "container %s", name)
	}
}
