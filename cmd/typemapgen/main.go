// Copyright (c) 2025 Visvasity LLC

// Typemapgen generates typed heterogeneous container types from a YAML
// schema manifest.
//
// For example, given this snippet,
//
//	package plugins
//
//	type Plugin interface {
//		PluginName() string
//		Tick()
//	}
//
//	type GraphicsPlugin struct{ Frames uint64 }
//	type SoundPlugin struct{ Samples uint64 }
//	type NetworkingPlugin struct{ Packets uint64 }
//
// and this typemaps.yaml manifest,
//
//	package: .
//	maps:
//	  - name: PluginMap
//	    dynamic: true
//	    iterable:
//	      - interface: Plugin
//	        method: Plugins
//	    fields:
//	      - type: GraphicsPlugin
//	        name: Graphics
//	      - type: SoundPlugin
//	      - type: NetworkingPlugin
//	        init: NewNetworkingPlugin(100)
//
// running
//
//	typemapgen generate -c typemaps.yaml
//
// creates pluginmap.typemap.go in the package directory, containing a
// PluginMap type with one inline field per declared type, an open extension
// keyed by runtime type identity, and the following interface:
//
//	func NewPluginMap() *PluginMap
//
//	func (m *PluginMap) GraphicsPlugin() *GraphicsPlugin
//	func (m *PluginMap) SoundPlugin() *SoundPlugin
//	func (m *PluginMap) NetworkingPlugin() *NetworkingPlugin
//
//	func (m *PluginMap) Slot(key reflect.Type) (any, bool)
//	func (m *PluginMap) Insert(value any) (any, error)
//	func (m *PluginMap) Keys() []reflect.Type
//	func (m *PluginMap) Len() int
//
//	func (m *PluginMap) Plugins() iter.Seq[Plugin]
//
// The generated type implements typemap.Map, so the generic helpers in
// github.com/visvasity/typemapgen/typemap (Get, GetKeyed, Insert, Has) work
// against it as well.
package main

func main() {
	Execute()
}
