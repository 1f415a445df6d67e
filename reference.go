package ctxgraph

import "weak"

// Reference is anything that can hand back the value it refers to.
// Referent reports false once there is nothing to hand back.
type Reference[T any] interface {
	Referent() (T, bool)
}

// StrongReference keeps its referent alive. Two strong references are equal
// when they point at the same object.
type StrongReference[T any] struct {
	ptr *T
}

// NewStrongReference wraps ptr.
func NewStrongReference[T any](ptr *T) StrongReference[T] {
	return StrongReference[T]{ptr: ptr}
}

func (r StrongReference[T]) Referent() (*T, bool) {
	return r.ptr, r.ptr != nil
}

// WeakReference refers to an object without keeping it alive. Equality is
// identity based and remains stable after the referent is collected, which
// makes it usable as a map key for bookkeeping of dead objects.
type WeakReference[T any] struct {
	ptr weak.Pointer[T]
}

// NewWeakReference creates a weak reference to ptr. A nil ptr yields a
// reference that is always nil.
func NewWeakReference[T any](ptr *T) WeakReference[T] {
	return WeakReference[T]{ptr: weak.Make(ptr)}
}

func (r WeakReference[T]) Referent() (*T, bool) {
	p := r.ptr.Value()
	return p, p != nil
}

// IsNil reports whether the referent is gone (or was never set).
func (r WeakReference[T]) IsNil() bool {
	return r.ptr.Value() == nil
}

// BoxedValue holds a value directly.
type BoxedValue[T any] struct {
	value T
}

// NewBoxedValue boxes v.
func NewBoxedValue[T any](v T) BoxedValue[T] {
	return BoxedValue[T]{value: v}
}

func (b BoxedValue[T]) Referent() (T, bool) {
	return b.value, true
}

// AnyReference erases the type of a Reference.
type AnyReference struct {
	base     any
	referent func() (any, bool)
}

// EraseReference wraps r so references of different types can share a
// container.
func EraseReference[T any](r Reference[T]) AnyReference {
	return AnyReference{
		base: r,
		referent: func() (any, bool) {
			return r.Referent()
		},
	}
}

// Base returns the reference that was erased.
func (r AnyReference) Base() any {
	return r.base
}

func (r AnyReference) Referent() (any, bool) {
	if r.referent == nil {
		return nil, false
	}
	return r.referent()
}
