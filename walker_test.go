package ctxgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centraunit/ctxgraph"
	"github.com/centraunit/ctxgraph/mock"
)

func TestAttachDetachOrdering(t *testing.T) {
	rec := &mock.Recorder{}
	c1 := &mock.Part{Name: "c1", Rec: rec}
	c2 := &mock.Part{Name: "c2", Rec: rec}
	session := mock.NewSession("p", rec, c1, c2)
	c := ctxgraph.New()

	ctxgraph.Store(c, sessionTag, session)
	assert.Equal(t, []string{"added:c1", "added:c2", "added:session:p"}, rec.Events())
	assert.True(t, session.ChildrenBoundOnAdd, "children are bound before the parent's AddedTo")

	rec.Reset()
	ctxgraph.Remove(c, sessionTag)
	assert.Equal(t, []string{"removed:session:p", "removed:c1", "removed:c2"}, rec.Events())
	assert.True(t, session.ChildrenBoundOnRemove, "children are still bound during the parent's RemovedFrom")
	assert.Nil(t, c1.BoundContext())
	assert.Nil(t, c2.BoundContext())
}

func TestAttachNestedContainers(t *testing.T) {
	rec := &mock.Recorder{}
	leaf := &mock.Part{Name: "leaf", Rec: rec}
	mid := &mock.Part{Name: "mid", Rec: rec, Children: []any{&mock.Panel{Children: []any{leaf}}}}
	session := mock.NewSession("root", rec, mid)

	ctxgraph.Store(ctxgraph.New(), sessionTag, session)

	assert.Equal(t, []string{"added:leaf", "added:mid", "added:session:root"}, rec.Events())
}

func TestAttachSkipsBoundNodes(t *testing.T) {
	rec := &mock.Recorder{}
	shared := &mock.Part{Name: "shared", Rec: rec}
	first := ctxgraph.New(ctxgraph.WithName("first"))
	second := ctxgraph.New(ctxgraph.WithName("second"))

	ctxgraph.Store(first, sessionTag, mock.NewSession("a", rec, shared))
	ctxgraph.Store(second, sessionTag, mock.NewSession("b", rec, shared))

	assert.Equal(t, []string{"added:shared", "added:session:a", "added:session:b"}, rec.Events())
	assert.Same(t, first, shared.BoundContext())
}

func TestSharedChildVisitedOnce(t *testing.T) {
	rec := &mock.Recorder{}
	shared := &mock.Part{Name: "shared", Rec: rec}
	left := &mock.Part{Name: "left", Rec: rec, Children: []any{shared}}
	right := &mock.Part{Name: "right", Rec: rec, Children: []any{shared}}
	session := mock.NewSession("s", rec, left, right)
	c := ctxgraph.New()

	ctxgraph.Store(c, sessionTag, session)
	require.Equal(t, []string{"added:shared", "added:left", "added:right", "added:session:s"}, rec.Events())

	rec.Reset()
	ctxgraph.Remove(c, sessionTag)
	assert.Equal(t, []string{"removed:session:s", "removed:left", "removed:shared", "removed:right"}, rec.Events())
}

func TestServiceNodeBindingIsWeak(t *testing.T) {
	part := &mock.Part{Name: "p"}
	assert.Nil(t, part.BoundContext())

	c := ctxgraph.New()
	ctxgraph.Store(c, sessionTag, mock.NewSession("s", nil, part))
	assert.Same(t, c, part.BoundContext())
}

func TestCyclicPartsAttachAndDetachOnce(t *testing.T) {
	rec := &mock.Recorder{}
	a := &mock.Part{Name: "a", Rec: rec}
	b := &mock.Part{Name: "b", Rec: rec, Children: []any{a}}
	a.Children = []any{b}
	session := mock.NewSession("s", rec, a)
	c := ctxgraph.New()

	ctxgraph.Store(c, sessionTag, session)
	require.Equal(t, []string{"added:b", "added:a", "added:session:s"}, rec.Events())
	assert.Same(t, c, a.BoundContext())
	assert.Same(t, c, b.BoundContext())

	rec.Reset()
	ctxgraph.Remove(c, sessionTag)
	assert.Equal(t, []string{"removed:session:s", "removed:a", "removed:b"}, rec.Events())
	assert.Nil(t, a.BoundContext())
	assert.Nil(t, b.BoundContext())
}
