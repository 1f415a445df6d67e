package main

import (
	"fmt"
	"io"

	"github.com/centraunit/ctxgraph"
	"github.com/centraunit/ctxgraph/internal/config"
)

// trace prints hook invocations as they happen.
type trace struct {
	w io.Writer
}

func (t *trace) add(format string, args ...any) {
	fmt.Fprintf(t.w, format+"\n", args...)
}

type treeNode struct {
	spec     config.NodeSpec
	children []any
	built    bool
	tr       *trace
}

func (n *treeNode) build() {
	n.children = buildNodes(n.spec.Children, n.tr)
	n.built = true
}

func (n *treeNode) ContextPreload() {
	if n.built {
		return
	}
	n.tr.add("preload   %s", n.spec.ID)
	n.build()
}

func (n *treeNode) ChildContextObjects() []any {
	return n.children
}

type plainNode struct {
	treeNode
}

type awareNode struct {
	ctxgraph.NodeBase
	treeNode
}

func (n *awareNode) ContextAvailable() {
	n.tr.add("available %s token=%s", n.spec.ID, n.ContextToken().ID())
}

// buildNodes materializes specs. Nodes marked preload leave their children
// unbuilt until the walker preloads them.
func buildNodes(specs []config.NodeSpec, tr *trace) []any {
	nodes := make([]any, 0, len(specs))
	for _, spec := range specs {
		base := treeNode{spec: spec, tr: tr}
		if !spec.Preload {
			base.build()
		}
		if spec.Aware {
			nodes = append(nodes, &awareNode{treeNode: base})
		} else {
			nodes = append(nodes, &plainNode{treeNode: base})
		}
	}
	return nodes
}

type partNode struct {
	ctxgraph.ServiceNodeBase
	name     string
	children []any
	tr       *trace
}

func (p *partNode) ChildContextObjects() []any {
	return p.children
}

func (p *partNode) AddedTo(c *ctxgraph.Context) {
	p.tr.add("added     %s", p.name)
}

func (p *partNode) RemovedFrom(c *ctxgraph.Context) {
	p.tr.add("removed   %s", p.name)
}

func buildParts(specs []config.NodeSpec, tr *trace) []any {
	parts := make([]any, 0, len(specs))
	for _, spec := range specs {
		parts = append(parts, &partNode{
			name:     spec.ID,
			children: buildParts(spec.Children, tr),
			tr:       tr,
		})
	}
	return parts
}

// scriptService is what a store step puts in the registry.
type scriptService struct {
	partNode
	component string
}

func (s *scriptService) Component() string {
	return s.component
}

func scriptTag(id string) ctxgraph.Tag[*scriptService, string] {
	return ctxgraph.NamedTag[*scriptService, string](id)
}

func newScriptService(spec config.ServiceSpec, component string, tr *trace) *scriptService {
	return &scriptService{
		partNode: partNode{
			name:     fmt.Sprintf("%s(%s)", spec.Tag, component),
			children: buildParts(spec.Parts, tr),
			tr:       tr,
		},
		component: component,
	}
}
