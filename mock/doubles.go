package mock

import (
	"fmt"
	"sync"

	"github.com/centraunit/ctxgraph"
)

// Recorder collects hook invocations in call order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Record(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Screen is a capability-aware node with children, standing in for a view
// controller.
type Screen struct {
	ctxgraph.NodeBase

	Name     string
	Children []any
	// Lazy, when set, is called by ContextPreload to build Children.
	Lazy func() []any
	Rec  *Recorder

	Preloads  int
	Available int
}

func (s *Screen) ContextPreload() {
	s.Preloads++
	s.Rec.Record("preload:%s", s.Name)
	if s.Lazy != nil && s.Children == nil {
		s.Children = s.Lazy()
	}
}

func (s *Screen) ChildContextObjects() []any {
	return s.Children
}

func (s *Screen) ContextAvailable() {
	s.Available++
	s.Rec.Record("available:%s", s.Name)
}

// Panel is a container that does not want a token itself.
type Panel struct {
	Children []any
}

func (p *Panel) ChildContextObjects() []any {
	return p.Children
}

// Part is a service node that may own further parts.
type Part struct {
	ctxgraph.ServiceNodeBase

	Name     string
	Children []any
	Rec      *Recorder

	// ChildrenBoundOnAdd and ChildrenBoundOnRemove capture whether every
	// child Part was bound when the hook ran.
	ChildrenBoundOnAdd    bool
	ChildrenBoundOnRemove bool
}

func (p *Part) ChildContextObjects() []any {
	return p.Children
}

func (p *Part) AddedTo(c *ctxgraph.Context) {
	p.ChildrenBoundOnAdd = p.childrenBound()
	p.Rec.Record("added:%s", p.Name)
}

func (p *Part) RemovedFrom(c *ctxgraph.Context) {
	p.ChildrenBoundOnRemove = p.childrenBound()
	p.Rec.Record("removed:%s", p.Name)
}

func (p *Part) childrenBound() bool {
	for _, child := range p.Children {
		if part, ok := child.(*Part); ok && part.BoundContext() == nil {
			return false
		}
	}
	return true
}

// Session is a service whose component is a user name.
type Session struct {
	Part
	User string
}

func NewSession(user string, rec *Recorder, children ...any) *Session {
	return &Session{
		Part: Part{Name: "session:" + user, Children: children, Rec: rec},
		User: user,
	}
}

func (s *Session) Component() string {
	return s.User
}

// Settings is a service exposing a key/value component and no hooks.
type Settings struct {
	ctxgraph.ServiceNodeBase
	Values map[string]string
}

func (s *Settings) Component() map[string]string {
	return s.Values
}
