// Copyright (c) 2025 Visvasity LLC

package typemap

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type testNamed struct{ Name string }

type testNamer interface{ TheName() string }

func (v *testNamed) TheName() string { return v.Name }

func TestCellOwnership(t *testing.T) {
	orig := testNamed{Name: "a"}
	c := NewCell(orig)

	// The cell owns a copy; later mutation of the source is invisible.
	orig.Name = "b"
	require.Equal(t, testNamed{Name: "a"}, c.Value())
	require.Equal(t, reflect.TypeFor[testNamed](), c.Key())

	// Mutation through the owned pointer is visible in Value.
	c.Pointer().(*testNamed).Name = "c"
	require.Equal(t, testNamed{Name: "c"}, c.Value())
}

func TestCellViews(t *testing.T) {
	c := NewCell(testNamed{Name: "a"})

	_, ok := c.View("testNamer")
	require.False(t, ok)

	v, ok := c.Pointer().(testNamer)
	require.True(t, ok)
	c.Bind("testNamer", v)

	got, ok := c.View("testNamer")
	require.True(t, ok)
	require.Equal(t, "a", got.(testNamer).TheName())

	// The view wraps the owned pointer, so mutation stays in lockstep.
	c.Pointer().(*testNamed).Name = "z"
	require.Equal(t, "z", got.(testNamer).TheName())
}
