package node

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-fxhost/graph"
)

// Option configures a Host or Pipeline.
type Option func(*config)

type config struct {
	dispatch      Dispatcher
	log           *zap.Logger
	maxConcurrent int64
}

func defaultConfig() config {
	return config{maxConcurrent: 4}
}

func applyOptions(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	if c.log == nil {
		c.log = Logger()
	}

	return c
}

// WithDispatcher sets the control-context executor for change events. By
// default a host runs its own SerialDispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(c *config) {
		if d != nil {
			c.dispatch = d
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxConcurrent bounds the number of factories running at once.
func WithMaxConcurrent(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// NodeOption configures a node created by Host.NewNode.
type NodeOption func(*nodeConfig)

type initialValue struct {
	name  string
	value float64
}

type nodeConfig struct {
	values  []initialValue
	input   graph.Vertex
	started bool
}

// WithValue sets an initial parameter value. It is applied before the unit
// exists and pushed to the unit once it does.
func WithValue(name string, value float64) NodeOption {
	return func(c *nodeConfig) {
		c.values = append(c.values, initialValue{name: name, value: value})
	}
}

// WithInput connects v to the node's input as soon as the node is attached.
func WithInput(v graph.Vertex) NodeOption {
	return func(c *nodeConfig) { c.input = v }
}

// WithStarted requests the node to start once its unit is bound.
func WithStarted(started bool) NodeOption {
	return func(c *nodeConfig) { c.started = started }
}
