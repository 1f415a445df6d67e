package ctxgraph

// StorageKind identifies how a Storage holds its payload.
type StorageKind int

const (
	KindValue StorageKind = iota
	KindStrong
	KindWeak
	KindValueOrNil
	KindStrongOrNil
	KindWeakOrNil
)

func (k StorageKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindStrong:
		return "strong"
	case KindWeak:
		return "weak"
	case KindValueOrNil:
		return "valueOrNil"
	case KindStrongOrNil:
		return "strongOrNil"
	case KindWeakOrNil:
		return "weakOrNil"
	default:
		return "unknown"
	}
}

// Storage is a payload for Token.Store. The set of implementations is closed;
// build one with Value, Strong, Weak or their OrNil variants.
type Storage interface {
	Kind() StorageKind
	// reference returns nil when the payload is absent and the key should
	// be cleared.
	reference() *AnyReference
}

type storage struct {
	kind StorageKind
	ref  *AnyReference
}

func (s storage) Kind() StorageKind         { return s.kind }
func (s storage) reference() *AnyReference { return s.ref }

func erased(r AnyReference) *AnyReference { return &r }

// Value holds v directly.
func Value(v any) Storage {
	return storage{kind: KindValue, ref: erased(EraseReference[any](NewBoxedValue(v)))}
}

// Strong holds obj and keeps it alive.
func Strong[T any](obj *T) Storage {
	return storage{kind: KindStrong, ref: erased(EraseReference[*T](NewStrongReference(obj)))}
}

// Weak refers to obj without keeping it alive. Reads return nothing once obj
// has been collected.
func Weak[T any](obj *T) Storage {
	return storage{kind: KindWeak, ref: erased(EraseReference[*T](NewWeakReference(obj)))}
}

// ValueOrNil is Value, except a nil v clears the key.
func ValueOrNil(v any) Storage {
	if v == nil {
		return storage{kind: KindValueOrNil}
	}
	s := Value(v).(storage)
	s.kind = KindValueOrNil
	return s
}

// StrongOrNil is Strong, except a nil obj clears the key.
func StrongOrNil[T any](obj *T) Storage {
	if obj == nil {
		return storage{kind: KindStrongOrNil}
	}
	s := Strong(obj).(storage)
	s.kind = KindStrongOrNil
	return s
}

// WeakOrNil is Weak, except a nil obj clears the key.
func WeakOrNil[T any](obj *T) Storage {
	if obj == nil {
		return storage{kind: KindWeakOrNil}
	}
	s := Weak(obj).(storage)
	s.kind = KindWeakOrNil
	return s
}
