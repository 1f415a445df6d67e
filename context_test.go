package ctxgraph_test

import (
	"runtime"
	"testing"
	"time"
	"weak"

	"github.com/stretchr/testify/suite"

	"github.com/centraunit/ctxgraph"
	"github.com/centraunit/ctxgraph/mock"
)

type ContextTestSuite struct {
	suite.Suite
	ctx *ctxgraph.Context
	rec *mock.Recorder
}

func (s *ContextTestSuite) SetupTest() {
	s.ctx = ctxgraph.New(ctxgraph.WithName("test"))
	s.rec = &mock.Recorder{}
}

func (s *ContextTestSuite) TestWrapIsIdempotent() {
	screen := &mock.Screen{Name: "home", Rec: s.rec}

	wrapped := ctxgraph.Wrap(s.ctx, screen)
	s.Same(screen, wrapped)
	token := screen.ContextToken()
	s.Require().NotNil(token)

	ctxgraph.Wrap(s.ctx, screen)
	s.Same(token, screen.ContextToken(), "second wrap must not issue a new token")
	s.Equal(1, screen.Available)
	s.Equal(1, s.ctx.TokenCount())
}

func (s *ContextTestSuite) TestWrapOrder() {
	header := &mock.Screen{Name: "header", Rec: s.rec}
	footer := &mock.Screen{Name: "footer", Rec: s.rec}
	root := &mock.Screen{Name: "root", Rec: s.rec, Children: []any{header, footer}}

	s.ctx.Wrap(root)

	s.Equal([]string{
		"preload:root",
		"preload:header",
		"available:header",
		"preload:footer",
		"available:footer",
		"available:root",
	}, s.rec.Events())
	s.Equal(3, s.ctx.TokenCount())
}

func (s *ContextTestSuite) TestPreloadBuildsChildren() {
	var lazy *mock.Screen
	root := &mock.Screen{
		Name: "root",
		Rec:  s.rec,
		Lazy: func() []any {
			lazy = &mock.Screen{Name: "lazy", Rec: s.rec}
			return []any{lazy}
		},
	}

	s.ctx.Wrap(root)

	s.Require().NotNil(lazy)
	s.NotNil(lazy.ContextToken())
	s.Same(s.ctx, lazy.Context())
}

func (s *ContextTestSuite) TestWrapThroughPlainContainer() {
	inner := &mock.Screen{Name: "inner", Rec: s.rec}
	panel := &mock.Panel{Children: []any{inner, "not a node", nil}}

	s.ctx.Wrap(panel)

	s.NotNil(inner.ContextToken())
	s.Equal(1, s.ctx.TokenCount())
}

func (s *ContextTestSuite) TestNewInstance() {
	screen := ctxgraph.NewInstance[mock.Screen](s.ctx)

	s.NotNil(screen.ContextToken())
	s.Equal(1, screen.Available)
	s.Same(s.ctx, screen.ContextToken().Context())
}

func (s *ContextTestSuite) TestContextWrapUsesNodeContext() {
	parent := ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "parent"})
	child := ctxgraph.ContextWrap(parent, &mock.Screen{Name: "child"})

	s.Same(s.ctx, child.Context())
	s.Panics(func() {
		ctxgraph.ContextWrap(&mock.Screen{Name: "orphan"}, &mock.Screen{})
	})
}

func (s *ContextTestSuite) TestNewInstanceFromUsesNodeContext() {
	parent := ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "parent"})
	child := ctxgraph.NewInstanceFrom[mock.Screen](parent)

	s.Require().NotNil(child.ContextToken())
	s.Same(s.ctx, child.Context())
	s.Equal(1, child.Available)
	s.Equal(2, s.ctx.TokenCount())
	s.Panics(func() {
		ctxgraph.NewInstanceFrom[mock.Screen](&mock.Screen{Name: "orphan"})
	})
}

func (s *ContextTestSuite) TestTokenKnowsItsNode() {
	screen := ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "home"})

	s.Same(screen, screen.ContextToken().Node())
	s.NotEmpty(screen.ContextToken().ID())
}

func (s *ContextTestSuite) TestTokenOwnedByFirstContext() {
	other := ctxgraph.New(ctxgraph.WithName("other"))
	screen := ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "home"})

	ctxgraph.Wrap(other, screen)

	s.Same(s.ctx, screen.Context())
	s.Equal(0, other.TokenCount())
}

func (s *ContextTestSuite) TestCyclicChildrenTerminate() {
	a := &mock.Screen{Name: "a", Rec: s.rec}
	b := &mock.Screen{Name: "b", Rec: s.rec, Children: []any{a}}
	a.Children = []any{b}

	s.ctx.Wrap(a)

	s.Equal(1, a.Available)
	s.Equal(1, b.Available)
	s.Equal(1, a.Preloads)
}

func (s *ContextTestSuite) TestTokensAreNotRetained() {
	kept := ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "kept"})

	func() {
		for i := 0; i < 3; i++ {
			ctxgraph.Wrap(s.ctx, &mock.Screen{Name: "dropped"})
		}
	}()
	s.Equal(4, s.ctx.TokenCount())

	s.Eventually(func() bool {
		runtime.GC()
		return s.ctx.TokenCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Len(s.ctx.Tokens(), 1)
	s.Same(kept.ContextToken(), s.ctx.Tokens()[0])
	runtime.KeepAlive(kept)
}

func (s *ContextTestSuite) TestUnreachableContextIsCollected() {
	cases := map[string]func(c *ctxgraph.Context){
		"wrapped node only": func(c *ctxgraph.Context) {
			ctxgraph.Wrap(c, &mock.Screen{Name: "home"})
		},
		"stored service holds a wrapped node": func(c *ctxgraph.Context) {
			screen := ctxgraph.Wrap(c, &mock.Screen{Name: "inner"})
			ctxgraph.Store(c, sessionTag, mock.NewSession("a", nil, screen))
		},
		"pending subscriber captures a wrapped node": func(c *ctxgraph.Context) {
			screen := ctxgraph.Wrap(c, &mock.Screen{Name: "waiting"})
			ctxgraph.Awaitable(c, sessionTag).Then(func(*mock.Session) {
				screen.Available++
			})
		},
	}

	for name, build := range cases {
		s.Run(name, func() {
			ref := func() weak.Pointer[ctxgraph.Context] {
				c := ctxgraph.New(ctxgraph.WithName(name))
				build(c)
				return weak.Make(c)
			}()

			s.Eventually(func() bool {
				runtime.GC()
				return ref.Value() == nil
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestContextSuite(t *testing.T) {
	suite.Run(t, new(ContextTestSuite))
}
