// Package registry builds the per-record-type field tables that both
// dispatchers run on. A registry is constructed once per record type by
// introspecting its struct layout, published read-only, and shared by every
// subsequent request or message for that type.
package registry

import (
	"reflect"

	bindingpkg "github.com/drblury/fieldflow/internal/runtime/binding"
)

// accessor addresses one field inside a record type. It captures the field's
// index path at registry build time so per-request resolution is a plain
// index walk with no type lookups. Nested paths come from descending into
// struct fields that are not themselves extractable.
type accessor struct {
	index []int
}

func (a accessor) join(inner accessor) accessor {
	path := make([]int, 0, len(a.index)+len(inner.index))
	path = append(path, a.index...)
	path = append(path, inner.index...)
	return accessor{index: path}
}

// field resolves the accessor against a concrete record instance. The record
// value must be the addressable struct the accessor was built for; that
// precondition is established once at registry build time, not re-checked
// here.
func (a accessor) field(record reflect.Value) reflect.Value {
	v := record
	for _, i := range a.index {
		v = v.Field(i)
	}
	return v
}

// Handle is a typed, mutable reference to one field of one record instance.
// It is valid only for the lifetime of that instance and confers no
// ownership of the underlying storage.
type Handle struct {
	value reflect.Value
}

// Addr returns a pointer to the field as an interface value, typed as a
// pointer to the field's declared type.
func (h Handle) Addr() any {
	return h.value.Addr().Interface()
}

// Value returns the addressable reflect value of the field.
func (h Handle) Value() reflect.Value {
	return h.value
}

// Extractor returns the field's Extractor capability. Only valid for handles
// resolved from a parameter registry entry, where the capability was proven
// at build time.
func (h Handle) Extractor() bindingpkg.Extractor {
	return h.value.Addr().Interface().(bindingpkg.Extractor)
}

// Finalizer returns the field's Finalizer capability, if implemented.
func (h Handle) Finalizer() (bindingpkg.Finalizer, bool) {
	f, ok := h.value.Addr().Interface().(bindingpkg.Finalizer)
	return f, ok
}

// StatusCarrier returns the field's StatusCarrier capability, if implemented.
func (h Handle) StatusCarrier() (bindingpkg.StatusCarrier, bool) {
	c, ok := h.value.Addr().Interface().(bindingpkg.StatusCarrier)
	return c, ok
}
