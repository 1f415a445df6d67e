package ctxgraph

import (
	"reflect"
	"sync"
)

// Service is a capability stored in a Context under a Tag. C is the type of
// the component it exposes to consumers.
type Service[C any] interface {
	ServiceNode
	Component() C
}

// Tag names a registry slot and fixes the service type stored in it. Tags
// compare by ID: two tags with the same ID address the same slot, even if
// they were declared for different service types.
type Tag[S Service[C], C any] struct {
	id string
}

var typeNameCache sync.Map

func typeName(t reflect.Type) string {
	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}
	name := t.String()
	typeNameCache.Store(t, name)
	return name
}

// NewTag returns the tag whose ID is the name of the service type S.
func NewTag[S Service[C], C any]() Tag[S, C] {
	return Tag[S, C]{id: typeName(reflect.TypeOf((*S)(nil)).Elem())}
}

// NamedTag returns a tag with an explicit ID, for when several slots hold
// the same service type.
func NamedTag[S Service[C], C any](id string) Tag[S, C] {
	return Tag[S, C]{id: id}
}

// ID returns the slot identifier.
func (t Tag[S, C]) ID() string {
	if t.id == "" {
		return NewTag[S, C]().id
	}
	return t.id
}

func (t Tag[S, C]) String() string {
	return t.ID()
}
