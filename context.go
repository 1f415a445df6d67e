package ctxgraph

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Context is the root of a dependency graph. It issues Tokens to the nodes it
// wraps and holds the services stored under tags. A Context is meant to be
// driven from a single goroutine; hooks run inline and may call back into it.
type Context struct {
	name    string
	logger  *zap.Logger
	metrics atomic.Pointer[metrics]

	tokensMu sync.Mutex
	tokens   map[WeakReference[Token]]string

	mu       sync.Mutex
	services map[string]*anyService
	pending  map[string]*promise
	futures  map[string]*promise
}

// New creates an empty Context.
func New(opts ...Option) *Context {
	o := options{
		name:   DefaultName,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		name:     o.name,
		logger:   o.logger.With(zap.String("context", o.name)),
		tokens:   make(map[WeakReference[Token]]string),
		services: make(map[string]*anyService),
		pending:  make(map[string]*promise),
		futures:  make(map[string]*promise),
	}

	m, err := newMetrics(o.registerer, c)
	if err != nil {
		c.logger.Warn("metrics disabled", zap.Error(err))
	}
	c.metrics.Store(m)
	return c
}

// Name returns the label given with WithName.
func (c *Context) Name() string {
	return c.name
}

// UnregisterMetrics removes the Context's collectors from the registerer
// given to WithMetrics. Later events are no longer counted.
func (c *Context) UnregisterMetrics() {
	c.metrics.Swap(nil).unregister()
}

// Wrap walks obj and its declared children, issuing a Token to every Node
// that lacks one. Wrapping an already wrapped node does nothing.
func (c *Context) Wrap(obj any) {
	c.newWalker().wrap(obj)
}

// Wrap is the typed form of Context.Wrap; it returns obj so a value can be
// wrapped and assigned in one expression.
func Wrap[T any](c *Context, obj T) T {
	c.Wrap(obj)
	return obj
}

// NewInstance allocates a zero T and wraps it.
func NewInstance[T any, PT interface{ *T }](c *Context) PT {
	return Wrap(c, PT(new(T)))
}

// Tokens returns the tokens whose nodes are still alive, dropping records of
// collected ones.
func (c *Context) Tokens() []*Token {
	c.tokensMu.Lock()
	defer c.tokensMu.Unlock()

	live := make([]*Token, 0, len(c.tokens))
	for ref := range c.tokens {
		t, ok := ref.Referent()
		if !ok {
			delete(c.tokens, ref)
			continue
		}
		live = append(live, t)
	}
	return live
}

// TokenCount returns the number of live tokens.
func (c *Context) TokenCount() int {
	return len(c.Tokens())
}

func (c *Context) addToken(rec tokenRecord) {
	c.tokensMu.Lock()
	c.tokens[rec.ref] = rec.id
	c.tokensMu.Unlock()

	c.metrics.Load().tokenIssued()
	c.logger.Debug("token issued", zap.String("token", rec.id))
}

// removeToken runs on the runtime's cleanup goroutine.
func (c *Context) removeToken(rec tokenRecord) {
	c.tokensMu.Lock()
	_, ok := c.tokens[rec.ref]
	delete(c.tokens, rec.ref)
	c.tokensMu.Unlock()

	c.metrics.Load().tokenReleased()
	if ok {
		c.logger.Debug("token released", zap.String("token", rec.id))
	}
}
