package ctxgraph

import (
	"reflect"

	"go.uber.org/zap"
)

// walker performs one traversal of a node graph. Each comparable object is
// visited at most once per traversal, so cyclic child declarations terminate.
type walker struct {
	c       *Context
	visited map[any]struct{}
}

func (c *Context) newWalker() *walker {
	return &walker{c: c, visited: make(map[any]struct{}, 8)}
}

func (w *walker) enter(obj any) bool {
	if isNil(obj) {
		return false
	}
	if !reflect.ValueOf(obj).Comparable() {
		return true
	}
	if _, seen := w.visited[obj]; seen {
		return false
	}
	w.visited[obj] = struct{}{}
	return true
}

func children(obj any) []any {
	if container, ok := obj.(NodeContainer); ok {
		return container.ChildContextObjects()
	}
	return nil
}

// attach binds every unbound ServiceNode under obj to the Context. Children
// are attached before their parent, so a parent's AddedTo sees them bound.
func (w *walker) attach(obj any) {
	if !w.enter(obj) {
		return
	}
	for _, child := range children(obj) {
		w.attach(child)
	}

	sn, ok := obj.(ServiceNode)
	if !ok {
		return
	}
	base := sn.serviceNodeBase()
	if base.BoundContext() != nil {
		return
	}
	base.bind(w.c)
	w.c.logger.Debug("service node added", zap.String("type", typeOfValue(obj)))
	sn.AddedTo(w.c)
}

// detach unbinds every bound ServiceNode under obj. A parent is unbound before
// its children, so its RemovedFrom still sees them bound.
func (w *walker) detach(obj any) {
	if !w.enter(obj) {
		return
	}

	if sn, ok := obj.(ServiceNode); ok {
		base := sn.serviceNodeBase()
		if base.BoundContext() != nil {
			w.c.logger.Debug("service node removed", zap.String("type", typeOfValue(obj)))
			sn.RemovedFrom(w.c)
			base.bind(nil)
		}
	}

	for _, child := range children(obj) {
		w.detach(child)
	}
}

// wrap preloads obj, wraps its children, then issues obj its token.
func (w *walker) wrap(obj any) {
	if !w.enter(obj) {
		return
	}
	if p, ok := obj.(Preloadable); ok {
		p.ContextPreload()
	}
	for _, child := range children(obj) {
		w.wrap(child)
	}

	n, ok := obj.(Node)
	if !ok {
		return
	}
	nb := n.nodeBase()
	if nb.ContextToken() != nil {
		return
	}
	t := newToken(w.c)
	nb.attach(n, t)
	t.track()
	n.ContextAvailable()
}
