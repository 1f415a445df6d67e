package ctxgraph

import (
	"context"
	"sync"
)

// promise is a single-assignment value shared by every Future handed out for
// one tag.
type promise struct {
	mu        sync.Mutex
	done      chan struct{}
	value     any
	resolved  bool
	callbacks []func(any)
}

func newPromise() *promise {
	return &promise{done: make(chan struct{})}
}

func resolvedPromise(v any) *promise {
	p := newPromise()
	p.resolve(v)
	return p
}

// resolve sets the value and runs pending callbacks inline. Later calls are
// ignored and report false.
func (p *promise) resolve(v any) bool {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return false
	}
	p.value = v
	p.resolved = true
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(v)
	}
	return true
}

func (p *promise) load() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.resolved
}

func (p *promise) then(fn func(any)) {
	p.mu.Lock()
	if !p.resolved {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	v := p.value
	p.mu.Unlock()
	fn(v)
}

// Future delivers the first service stored for a tag. Once resolved it keeps
// returning the same service, regardless of later stores.
type Future[S any] struct {
	tag string
	p   *promise
}

// Tag returns the identifier of the slot the future waits on.
func (f *Future[S]) Tag() string {
	return f.tag
}

// Done is closed once the future resolves.
func (f *Future[S]) Done() <-chan struct{} {
	return f.p.done
}

// Resolved reports whether a service has been delivered.
func (f *Future[S]) Resolved() bool {
	_, ok := f.p.load()
	return ok
}

// Value returns the delivered service without blocking. It reports false
// before resolution, or when the delivered service is not an S.
func (f *Future[S]) Value() (S, bool) {
	var zero S
	v, ok := f.p.load()
	if !ok {
		return zero, false
	}
	typed, ok := v.(S)
	return typed, ok
}

// Then calls fn with the service once the future resolves. If it already has,
// fn runs immediately; otherwise it runs inside the Store that resolves it.
// fn is not called when the delivered service is not an S.
func (f *Future[S]) Then(fn func(S)) {
	f.p.then(func(v any) {
		if typed, ok := v.(S); ok {
			fn(typed)
		}
	})
}

// Await blocks until the future resolves or ctx is done.
func (f *Future[S]) Await(ctx context.Context) (S, error) {
	var zero S
	select {
	case <-f.p.done:
	case <-ctx.Done():
		return zero, &AwaitError{Tag: f.tag, Err: ctx.Err()}
	}

	v, _ := f.p.load()
	typed, ok := v.(S)
	if !ok {
		return zero, &TypeMismatchError{Tag: f.tag, Expected: typeOf[S](), Got: typeOfValue(v)}
	}
	return typed, nil
}
