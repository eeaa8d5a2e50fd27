package erasure

import "context"

// Strategy is the policy applied to a data-domain component during erasure.
type Strategy string

const (
	// StrategyUnspecified indicates no strategy could be resolved for a component.
	StrategyUnspecified Strategy = ""

	// StrategyAnonymize overwrites personally identifying fields with
	// placeholder values while retaining the records.
	StrategyAnonymize Strategy = "anonymize"

	// StrategyDelete removes the records entirely.
	StrategyDelete Strategy = "delete"
)

func (s Strategy) String() string { return string(s) }

// ParseStrategy converts a string to a Strategy.
func ParseStrategy(s string) Strategy {
	switch s {
	case "anonymize":
		return StrategyAnonymize
	case "delete":
		return StrategyDelete
	default:
		return StrategyUnspecified
	}
}

// Processor erases or anonymizes a single data domain for one customer.
// Implementations must be idempotent: a retry re-runs every component for the
// customer, including those that already succeeded on a previous attempt.
type Processor interface {
	Execute(ctx context.Context, customerID int64) error
}

// StrategyResolver resolves which strategy applies to each named component and
// exposes the inverse mapping, driven off configuration.
type StrategyResolver interface {
	// ComponentStrategy returns the configured strategy for a named component.
	// Unknown names yield StrategyUnspecified.
	ComponentStrategy(name string) Strategy

	// ComponentsByStrategy returns all configured component names matching the
	// given strategy, restricted to components registered under both
	// candidate strategies.
	ComponentsByStrategy(strategy Strategy) []string
}

// Executor fans a single customer erasure out to the per-component processors.
type Executor interface {
	// Execute runs every anonymize-strategy component to completion, then
	// every delete-strategy component. Per-component failures propagate.
	Execute(ctx context.Context, customerID int64) error

	// ExecuteProcessorStrategy resolves one component's strategy and invokes
	// the matching side's processor directly. It fails with
	// ErrUnknownStrategy when the component maps to neither strategy.
	ExecuteProcessorStrategy(ctx context.Context, name string, customerID int64) error
}
