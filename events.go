package ctxgraph

import "go.uber.org/zap"

// ServiceEventKind says what happened to a registry slot.
type ServiceEventKind int

const (
	ServiceAdded ServiceEventKind = iota
	ServiceRemoved
)

func (k ServiceEventKind) String() string {
	switch k {
	case ServiceAdded:
		return "added"
	case ServiceRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ServiceEvent describes one change to a registry slot.
type ServiceEvent struct {
	Kind    ServiceEventKind
	Tag     string
	Service any
}

// dispatch reports a registry change. Consumers that need to react to
// availability use Awaitable; events only feed logs and metrics.
func (c *Context) dispatch(ev ServiceEvent) {
	c.logger.Debug("service "+ev.Kind.String(),
		zap.String("tag", ev.Tag),
		zap.String("type", typeOfValue(ev.Service)),
	)
	c.metrics.Load().serviceEvent(ev)
}
