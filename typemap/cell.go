// Copyright (c) 2025 Visvasity LLC

package typemap

import "reflect"

// A Cell is one open-extension entry: an owned value together with the
// capability views bound to it when it was inserted.
//
// The cell's key and the concrete type of its owned value are always the
// same; generated Insert methods construct cells from the value they are
// keyed by and replace a cell wholesale on re-insertion. Views wrap the same
// pointer returned by Pointer, so iteration over a capability performs no
// type assertions and no allocations.
type Cell struct {
	key   reflect.Type
	ptr   any // address of the owned value
	views []view
}

type view struct {
	name  string
	iface any
}

// NewCell copies value into owned storage. The storage for the value itself
// is the only allocation made on behalf of an open-extension entry.
func NewCell(value any) *Cell {
	rv := reflect.ValueOf(value)
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return &Cell{key: rv.Type(), ptr: p.Interface()}
}

// Key returns the type identity of the owned value.
func (c *Cell) Key() reflect.Type {
	return c.key
}

// Pointer returns the address of the owned value.
func (c *Cell) Pointer() any {
	return c.ptr
}

// Value returns a copy of the owned value.
func (c *Cell) Value() any {
	return reflect.ValueOf(c.ptr).Elem().Interface()
}

// Bind records iface as the view of the owned value under the named
// capability. iface must wrap the pointer returned by Pointer.
func (c *Cell) Bind(name string, iface any) {
	c.views = append(c.views, view{name: name, iface: iface})
}

// View returns the view bound under name, if any. The view count is the
// number of capabilities declared for the container, so a linear scan wins
// over a map here.
func (c *Cell) View(name string) (any, bool) {
	for _, v := range c.views {
		if v.name == name {
			return v.iface, true
		}
	}
	return nil, false
}
