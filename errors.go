package ctxgraph

import (
	"fmt"
	"reflect"
)

// AwaitError is returned by Future.Await when the wait is abandoned.
type AwaitError struct {
	Tag string
	Err error
}

func (e *AwaitError) Error() string {
	return fmt.Sprintf("await service %s: %v", e.Tag, e.Err)
}

func (e *AwaitError) Unwrap() error {
	return e.Err
}

// TypeMismatchError means a tag slot was resolved with a service of another
// type, which happens when two tags share an identifier.
type TypeMismatchError struct {
	Tag      string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("service %s: type mismatch: expected %s, got %s", e.Tag, e.Expected, e.Got)
}

func typeOf[T any]() string {
	return typeName(reflect.TypeOf((*T)(nil)).Elem())
}

func typeOfValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeName(reflect.TypeOf(v))
}
