package event

import (
	"log/slog"
	"time"

	"github.com/dshills/gamebus/internal/event/dispatch"
)

// Option configures a Registry.
type Option func(*registryConfig)

// registryConfig contains configuration for the registry.
type registryConfig struct {
	// logger receives diagnostics for rejected and deferred operations.
	logger *slog.Logger

	// eventOptions are applied to events created by Register.
	eventOptions []EventOption

	budget time.Duration
}

// defaultRegistryConfig returns the default configuration.
func defaultRegistryConfig() registryConfig {
	return registryConfig{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *registryConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventOptions sets options applied to every event created by Register.
func WithEventOptions(opts ...EventOption) Option {
	return func(c *registryConfig) {
		c.eventOptions = append(c.eventOptions, opts...)
	}
}

// EventOption configures an Event.
type EventOption func(*Event)

// WithRunner sets the runner Invoke calls subscribers through. Events
// sharing a runner share its counters and handlers.
func WithRunner(r *dispatch.Runner) EventOption {
	return func(e *Event) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithCallbackBudget makes the registry warn about subscribers of its
// events that run longer than d. Zero disables the warning.
func WithCallbackBudget(d time.Duration) Option {
	return func(c *registryConfig) {
		c.budget = d
	}
}
