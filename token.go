package ctxgraph

import (
	"runtime"
	"sort"
	"sync"
	"weak"

	"github.com/google/uuid"
)

// Token is the capability handle a Context issues to a Node the first time
// the node is wrapped. The node owns its token; the Context only tracks it
// weakly. A Token carries keyed storage scoped to its node.
type Token struct {
	id      string
	context *Context
	node    weak.Pointer[nodeAnchor]

	mu     sync.RWMutex
	values map[string]AnyReference
}

func newToken(c *Context) *Token {
	return &Token{
		id:      uuid.NewString(),
		context: c,
		values:  make(map[string]AnyReference),
	}
}

// ID returns a unique identifier for the token, used in logs.
func (t *Token) ID() string {
	return t.id
}

// Context returns the Context that issued the token.
func (t *Token) Context() *Context {
	return t.context
}

// Node returns the node the token was issued to, or nil once that node has
// been collected.
func (t *Token) Node() Node {
	a := t.node.Value()
	if a == nil {
		return nil
	}
	return a.self
}

// Store records s under key. A nil s, or an OrNil storage with an absent
// payload, clears the key.
func (t *Token) Store(key string, s Storage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s == nil || s.reference() == nil {
		delete(t.values, key)
		return
	}
	t.values[key] = *s.reference()
}

// Delete clears key.
func (t *Token) Delete(key string) {
	t.Store(key, nil)
}

// Has reports whether key holds a live payload.
func (t *Token) Has(key string) bool {
	_, ok := t.load(key)
	return ok
}

// Keys returns the stored keys in sorted order, including keys whose weak
// referent has since been collected.
func (t *Token) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Token) load(key string) (any, bool) {
	t.mu.RLock()
	ref, ok := t.values[key]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ref.Referent()
}

// Retrieve fetches the payload under key as a V. It reports false when the
// key is absent, holds another type, or refers weakly to a collected object.
func Retrieve[V any](t *Token, key string) (V, bool) {
	var zero V
	if t == nil {
		return zero, false
	}
	v, ok := t.load(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// track registers the token in its context's live set and arranges for it
// to be dropped from that set once the token is collected.
func (t *Token) track() {
	rec := tokenRecord{id: t.id, ref: NewWeakReference(t)}
	t.context.addToken(rec)
	// The Context is passed weakly: it may reach t through stored services
	// or subscribers, and a cleanup whose argument reaches t never runs.
	runtime.AddCleanup(t, func(wc weak.Pointer[Context]) {
		if c := wc.Value(); c != nil {
			c.removeToken(rec)
		}
	}, weak.Make(t.context))
}

// tokenRecord is what a Context keeps per issued token. It must never hold
// the token strongly.
type tokenRecord struct {
	id  string
	ref WeakReference[Token]
}
