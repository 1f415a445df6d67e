package ctxgraph

import "reflect"

// anyService erases the type of a stored service.
type anyService struct {
	tag       string
	base      any
	node      ServiceNode
	component func() any
}

func eraseService[S Service[C], C any](tag string, svc S) *anyService {
	return &anyService{
		tag:       tag,
		base:      svc,
		node:      svc,
		component: func() any { return svc.Component() },
	}
}

// isNil reports whether v is nil or a typed nil pointer/interface/map/etc.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
