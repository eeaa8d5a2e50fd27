package erasure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
)

var _ erasure.StrategyResolver = (*ComponentStrategyRegistry)(nil)

// ComponentStrategyRegistry resolves the erasure strategy applied to each
// named data-domain component. Resolution is driven by configuration: explicit
// per-strategy component lists win, and components listed under neither fall
// back to the configured default strategy.
//
// A component is only recognized when a processor is registered for it on both
// strategy sides. This intersection guard keeps a misconfigured component name
// from silently skipping data during erasure.
type ComponentStrategyRegistry struct {
	defaultStrategy erasure.Strategy
	overrides       map[string]erasure.Strategy
	known           map[string]struct{}
}

// NewComponentStrategyRegistry builds a registry from the configured default
// strategy and per-strategy component lists, validated against the processors
// registered in the two pools.
func NewComponentStrategyRegistry(
	defaultStrategy erasure.Strategy,
	anonymizeComponents []string,
	deleteComponents []string,
	anonymizePool *ProcessorPool,
	deletePool *ProcessorPool,
) *ComponentStrategyRegistry {
	known := make(map[string]struct{})
	for _, name := range anonymizePool.Names() {
		if deletePool.Has(name) {
			known[name] = struct{}{}
		}
	}

	overrides := make(map[string]erasure.Strategy, len(anonymizeComponents)+len(deleteComponents))
	for _, name := range anonymizeComponents {
		overrides[name] = erasure.StrategyAnonymize
	}
	for _, name := range deleteComponents {
		overrides[name] = erasure.StrategyDelete
	}

	return &ComponentStrategyRegistry{
		defaultStrategy: defaultStrategy,
		overrides:       overrides,
		known:           known,
	}
}

// Validate fails fast on configuration defects: an unrecognized default
// strategy, or a configured component name with no processor registered under
// both strategy sides.
func (r *ComponentStrategyRegistry) Validate() error {
	if r.defaultStrategy != erasure.StrategyAnonymize && r.defaultStrategy != erasure.StrategyDelete {
		return fmt.Errorf("%w: default strategy %q", erasure.ErrUnknownStrategy, r.defaultStrategy.String())
	}

	var unknown []string
	for name := range r.overrides {
		if _, ok := r.known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: components configured without processors on both sides: %s",
			erasure.ErrUnknownProcessor, strings.Join(unknown, ", "))
	}

	return nil
}

// ComponentStrategy returns the configured strategy for a named component.
// Unknown names yield StrategyUnspecified.
func (r *ComponentStrategyRegistry) ComponentStrategy(name string) erasure.Strategy {
	if _, ok := r.known[name]; !ok {
		return erasure.StrategyUnspecified
	}
	if s, ok := r.overrides[name]; ok {
		return s
	}
	return r.defaultStrategy
}

// ComponentsByStrategy returns all recognized component names resolving to the
// given strategy, in sorted order.
func (r *ComponentStrategyRegistry) ComponentsByStrategy(strategy erasure.Strategy) []string {
	var names []string
	for name := range r.known {
		if r.ComponentStrategy(name) == strategy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
