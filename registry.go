package ctxgraph

import "go.uber.org/zap"

// Store puts svc in the slot named by tag. A service already in the slot is
// detached first; then svc is attached and any subscriber waiting on the
// tag receives it. Storing a nil svc only clears the slot.
func Store[S Service[C], C any](c *Context, tag Tag[S, C], svc S) {
	id := tag.ID()
	if isNil(svc) {
		c.store(id, nil)
		return
	}
	c.store(id, eraseService[S, C](id, svc))
}

// Remove clears the slot named by tag.
func Remove[S Service[C], C any](c *Context, tag Tag[S, C]) {
	c.store(tag.ID(), nil)
}

// Lookup returns the service in the slot named by tag. It reports false if
// the slot is empty or holds a service of another type.
func Lookup[S Service[C], C any](c *Context, tag Tag[S, C]) (S, bool) {
	var zero S
	entry := c.entry(tag.ID())
	if entry == nil {
		return zero, false
	}
	svc, ok := entry.base.(S)
	if !ok {
		return zero, false
	}
	return svc, true
}

// ComponentOf returns the component of the service in the slot named by tag.
func ComponentOf[S Service[C], C any](c *Context, tag Tag[S, C]) (C, bool) {
	var zero C
	svc, ok := Lookup(c, tag)
	if !ok {
		return zero, false
	}
	return svc.Component(), true
}

// Awaitable returns a future for the first service stored under tag. The
// future is shared by every caller for the same tag: it resolves at once if
// a matching service is present, otherwise on the next store, and after that
// it keeps returning the value it resolved with.
func Awaitable[S Service[C], C any](c *Context, tag Tag[S, C]) *Future[S] {
	id := tag.ID()

	c.mu.Lock()
	p, ok := c.futures[id]
	if !ok {
		if entry := c.services[id]; entry != nil {
			if _, typed := entry.base.(S); typed {
				p = resolvedPromise(entry.base)
			}
		}
		if p == nil {
			p = newPromise()
			c.pending[id] = p
		}
		c.futures[id] = p
	}
	c.mu.Unlock()

	return &Future[S]{tag: id, p: p}
}

// Services returns the identifiers of the occupied slots.
func (c *Context) Services() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.services))
	for id := range c.services {
		ids = append(ids, id)
	}
	return ids
}

// ComponentByID returns the component of the service in slot id without
// knowing its type.
func (c *Context) ComponentByID(id string) (any, bool) {
	entry := c.entry(id)
	if entry == nil {
		return nil, false
	}
	return entry.component(), true
}

// PendingCount returns the number of tags with a subscriber still waiting.
func (c *Context) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Context) entry(id string) *anyService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.services[id]
}

// store replaces the slot id with svc (nil clears it). No lock is held while
// hooks run.
func (c *Context) store(id string, svc *anyService) {
	if old := c.entry(id); old != nil {
		c.newWalker().detach(old.base)
		c.dispatch(ServiceEvent{Kind: ServiceRemoved, Tag: id, Service: old.base})
	}

	c.mu.Lock()
	if svc == nil {
		delete(c.services, id)
	} else {
		c.services[id] = svc
	}
	c.mu.Unlock()

	if svc == nil {
		return
	}

	c.newWalker().attach(svc.base)
	c.dispatch(ServiceEvent{Kind: ServiceAdded, Tag: id, Service: svc.base})

	c.mu.Lock()
	p := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if p != nil && p.resolve(svc.base) {
		c.metrics.Load().delivered(id)
		c.logger.Debug("subscription delivered", zap.String("tag", id))
	}
}
