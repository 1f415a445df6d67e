package ctxgraph

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultName = "default"

type options struct {
	name       string
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// Option configures a Context.
type Option func(*options)

// WithName labels the Context in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name = strings.TrimSpace(name); name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers the Context's collectors with reg. They stay
// registered, reporting zero gauges once the Context is collected, until
// Context.UnregisterMetrics is called.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
