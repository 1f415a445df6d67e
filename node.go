package ctxgraph

import "weak"

// Node is an object that wants a Token from the Context that wraps it.
// Implementations embed NodeBase, which stores the token.
//
//	type Screen struct {
//		ctxgraph.NodeBase
//	}
//
//	func (s *Screen) ContextAvailable() { ... }
type Node interface {
	// ContextAvailable is called exactly once, after the token is attached.
	ContextAvailable()

	nodeBase() *NodeBase
}

// NodeContainer exposes the immediate children of a node. The walker never
// discovers structure any other way.
type NodeContainer interface {
	ChildContextObjects() []any
}

// Preloadable nodes get a chance to build lazy substructure before their
// children are enumerated.
type Preloadable interface {
	ContextPreload()
}

// NodeBase provides token storage for a Node. Embed it by value.
type NodeBase struct {
	anchor *nodeAnchor
}

// nodeAnchor is a separate allocation so a Token can point at its node
// weakly without a pointer into the middle of the node.
type nodeAnchor struct {
	token *Token
	self  Node
}

func (b *NodeBase) nodeBase() *NodeBase { return b }

// ContextToken returns the node's token, or nil before the node is wrapped.
func (b *NodeBase) ContextToken() *Token {
	if b.anchor == nil {
		return nil
	}
	return b.anchor.token
}

// Context returns the Context the node was wrapped by, or nil before the
// node is wrapped.
func (b *NodeBase) Context() *Context {
	if t := b.ContextToken(); t != nil {
		return t.context
	}
	return nil
}

func (b *NodeBase) attach(self Node, t *Token) {
	b.anchor = &nodeAnchor{token: t, self: self}
	t.node = weak.Make(b.anchor)
}

// ContextWrap wraps obj with the Context of n. It panics if n has not been
// wrapped yet.
func ContextWrap[T any](n Node, obj T) T {
	return Wrap(nodeContext(n, "ContextWrap"), obj)
}

// NewInstanceFrom allocates a zero T and wraps it with the Context of n. It
// panics if n has not been wrapped yet.
func NewInstanceFrom[T any, PT interface{ *T }](n Node) PT {
	return NewInstance[T, PT](nodeContext(n, "NewInstanceFrom"))
}

func nodeContext(n Node, op string) *Context {
	c := n.nodeBase().Context()
	if c == nil {
		panic("ctxgraph: " + op + " called on a node without a context")
	}
	return c
}

// ServiceNode receives attach/detach notifications when the service that
// contains it is stored in or cleared from a Context. Implementations embed
// ServiceNodeBase, which supplies the context binding and no-op hooks.
type ServiceNode interface {
	AddedTo(c *Context)
	RemovedFrom(c *Context)

	serviceNodeBase() *ServiceNodeBase
}

// ServiceNodeBase binds a ServiceNode to a Context without keeping the
// Context alive.
type ServiceNodeBase struct {
	context weak.Pointer[Context]
	bound   bool
}

func (b *ServiceNodeBase) serviceNodeBase() *ServiceNodeBase { return b }

// BoundContext returns the Context the node is attached to, or nil when it
// is detached or the Context has been collected.
func (b *ServiceNodeBase) BoundContext() *Context {
	if !b.bound {
		return nil
	}
	return b.context.Value()
}

// AddedTo is a no-op; override it to react to attachment.
func (b *ServiceNodeBase) AddedTo(*Context) {}

// RemovedFrom is a no-op; override it to react to detachment.
func (b *ServiceNodeBase) RemovedFrom(*Context) {}

func (b *ServiceNodeBase) bind(c *Context) {
	if c == nil {
		b.context = weak.Pointer[Context]{}
		b.bound = false
		return
	}
	b.context = weak.Make(c)
	b.bound = true
}
