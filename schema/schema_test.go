// Copyright (c) 2025 Visvasity LLC

package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const validManifest = `
package: .
maps:
  - name: PluginMap
    dynamic: true
    iterable:
      - interface: Plugin
        method: Plugins
    fields:
      - type: GraphicsPlugin
        name: Graphics
      - type: SoundPlugin
      - type: NetworkingPlugin
        init: NewNetworkingPlugin(100)
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	want := &File{
		Package: ".",
		Maps: []*Map{{
			Name:    "PluginMap",
			Dynamic: true,
			Iterable: []*Iterable{
				{Interface: "Plugin", Method: "Plugins"},
			},
			Fields: []*Field{
				{Type: "GraphicsPlugin", Name: "Graphics"},
				{Type: "SoundPlugin"},
				{Type: "NetworkingPlugin", Init: "NewNetworkingPlugin(100)"},
			},
		}},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse([]byte(`
maps:
  - name: M
    iterable:
      - interface: Plugin
    fields:
      - type: T
`))
	require.NoError(t, err)
	require.Equal(t, ".", f.Package)
	require.Equal(t, "Plugins", f.Maps[0].Iterable[0].Method)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", ``, "empty manifest"},
		{"no maps", `package: .`, "no maps"},
		{"unknown key", `
maps:
  - name: M
    dynamics: true
    fields:
      - type: T
`, "field dynamics not found"},
		{"bad map name", `
maps:
  - name: "2Map"
    fields:
      - type: T
`, "not a valid identifier"},
		{"no fields", `
maps:
  - name: M
`, "declares no fields"},
		{"missing type", `
maps:
  - name: M
    fields:
      - name: X
`, "has no type"},
		{"non-identifier key type", `
maps:
  - name: M
    fields:
      - type: "map[string]int"
`, "must be a type identifier"},
		{"bad field name", `
maps:
  - name: M
    fields:
      - type: T
        name: "x y"
`, "not a valid identifier"},
		{"bad iterable method", `
maps:
  - name: M
    iterable:
      - interface: Plugin
        method: "x y"
    fields:
      - type: T
`, "not a valid identifier"},
		{"duplicate map", `
maps:
  - name: M
    fields:
      - type: T
  - name: M
    fields:
      - type: U
`, "declared twice"},
		{"map names differing only by case", `
maps:
  - name: PluginMap
    fields:
      - type: T
  - name: pluginMap
    fields:
      - type: U
`, "would generate the same output file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnnamed(t *testing.T) {
	require.True(t, (&Field{}).Unnamed())
	require.True(t, (&Field{Name: "_"}).Unnamed())
	require.False(t, (&Field{Name: "x"}).Unnamed())
}
