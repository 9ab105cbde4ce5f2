// Copyright (c) 2025 Visvasity LLC

// Package typemap is the runtime support package for container types produced
// by the typemapgen command.
//
// Every generated container implements the [Map] interface. The generic
// helpers in this package ([Get], [GetKeyed], [Insert], [Has]) work against
// that interface so that code can be written over any generated container
// without knowing its concrete type. Fixed slots additionally get direct
// accessor methods on the generated type itself; those need nothing from this
// package.
//
// A container is a single-owner, single-goroutine value. Callers that share
// one instance across goroutines must add their own synchronization.
package typemap

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnknownType is reported by Insert when the inserted value's type matches
// no fixed slot and the container has no open extension. It is the only
// runtime error a generated container produces.
var ErrUnknownType = errors.New("typemap: no slot for type")

// Map is the runtime contract implemented by every generated container.
type Map interface {
	// Slot returns the address of the value stored under key, checking the
	// fixed slots in declaration order before the open extension.
	Slot(key reflect.Type) (any, bool)

	// Insert stores value under its concrete type and returns the value that
	// was stored under that type before the call, or nil if there was none.
	Insert(value any) (any, error)

	// Len returns the number of stored values, fixed and dynamic.
	Len() int
}

// KeyOf returns the type-identity key for T.
func KeyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Get returns the address of the value stored under T's type identity.
//
// For fixed slots the result is always present; prefer the generated accessor
// methods there, which skip the dispatch entirely. Get panics if T is the key
// of a slot whose stored value has a different type; use GetKeyed for those.
func Get[T any](m Map) (*T, bool) {
	p, ok := m.Slot(KeyOf[T]())
	if !ok {
		return nil, false
	}
	v, ok := p.(*T)
	if !ok {
		panic(fmt.Sprintf("typemap: slot keyed by %v stores a %T; use GetKeyed", KeyOf[T](), p))
	}
	return v, true
}

// GetKeyed returns the address of the value stored under key type K for slots
// declared with a value-type redirection (key K storing a V).
func GetKeyed[K, V any](m Map) (*V, bool) {
	p, ok := m.Slot(KeyOf[K]())
	if !ok {
		return nil, false
	}
	v, ok := p.(*V)
	if !ok {
		panic(fmt.Sprintf("typemap: slot keyed by %v stores a %T, not a %v", KeyOf[K](), p, KeyOf[V]()))
	}
	return v, true
}

// Has reports whether a value is stored under T's type identity.
func Has[T any](m Map) bool {
	_, ok := m.Slot(KeyOf[T]())
	return ok
}

// Insert stores value under its concrete type. The returned prev is the value
// stored under that type before the call; ok reports whether there was one.
// Fixed slots always report a previous value.
func Insert[T any](m Map, value T) (prev T, ok bool, err error) {
	p, err := m.Insert(value)
	if err != nil || p == nil {
		var zero T
		return zero, false, err
	}
	v, vok := p.(T)
	if !vok {
		panic(fmt.Sprintf("typemap: previous value for %v is a %T", KeyOf[T](), p))
	}
	return v, true, nil
}
