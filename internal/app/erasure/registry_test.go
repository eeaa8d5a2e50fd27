package erasure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

// stubProcessor records the customers it was invoked for and optionally fails.
type stubProcessor struct {
	calls []int64
	err   error
}

func (p *stubProcessor) Execute(_ context.Context, customerID int64) error {
	p.calls = append(p.calls, customerID)
	return p.err
}

func newTestPool(t *testing.T, side erasure.Strategy, names ...string) *ProcessorPool {
	t.Helper()
	pool := NewProcessorPool(side, logger.Noop(), noop.NewTracerProvider().Tracer("test"))
	for _, name := range names {
		pool.Register(name, &stubProcessor{})
	}
	return pool
}

func TestRegistryComponentStrategy(t *testing.T) {
	anonymizePool := newTestPool(t, erasure.StrategyAnonymize, "customer", "order", "subscriber")
	deletePool := newTestPool(t, erasure.StrategyDelete, "customer", "order", "subscriber")

	registry := NewComponentStrategyRegistry(
		erasure.StrategyAnonymize,
		[]string{"customer"},
		[]string{"order"},
		anonymizePool,
		deletePool,
	)
	require.NoError(t, registry.Validate())

	tests := []struct {
		name      string
		component string
		expected  erasure.Strategy
	}{
		{name: "explicit anonymize entry", component: "customer", expected: erasure.StrategyAnonymize},
		{name: "explicit delete entry", component: "order", expected: erasure.StrategyDelete},
		{name: "unlisted falls back to default", component: "subscriber", expected: erasure.StrategyAnonymize},
		{name: "unregistered name", component: "wishlist", expected: erasure.StrategyUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, registry.ComponentStrategy(tt.component))
		})
	}
}

func TestRegistryComponentsByStrategy(t *testing.T) {
	anonymizePool := newTestPool(t, erasure.StrategyAnonymize, "customer", "order", "subscriber")
	deletePool := newTestPool(t, erasure.StrategyDelete, "customer", "order", "subscriber")

	registry := NewComponentStrategyRegistry(
		erasure.StrategyAnonymize,
		nil,
		[]string{"order"},
		anonymizePool,
		deletePool,
	)

	assert.Equal(t, []string{"customer", "subscriber"}, registry.ComponentsByStrategy(erasure.StrategyAnonymize))
	assert.Equal(t, []string{"order"}, registry.ComponentsByStrategy(erasure.StrategyDelete))
}

func TestRegistryRequiresProcessorsOnBothSides(t *testing.T) {
	// "subscriber" only has an anonymize processor, so the registry must not
	// recognize it.
	anonymizePool := newTestPool(t, erasure.StrategyAnonymize, "customer", "subscriber")
	deletePool := newTestPool(t, erasure.StrategyDelete, "customer")

	registry := NewComponentStrategyRegistry(
		erasure.StrategyAnonymize, nil, nil, anonymizePool, deletePool)

	assert.Equal(t, erasure.StrategyUnspecified, registry.ComponentStrategy("subscriber"))
	assert.Equal(t, []string{"customer"}, registry.ComponentsByStrategy(erasure.StrategyAnonymize))
}

func TestRegistryValidate(t *testing.T) {
	tests := []struct {
		name            string
		defaultStrategy erasure.Strategy
		anonymize       []string
		deletion        []string
		wantErr         error
	}{
		{
			name:            "valid configuration",
			defaultStrategy: erasure.StrategyAnonymize,
			anonymize:       []string{"customer"},
			deletion:        []string{"order"},
		},
		{
			name:            "unknown default strategy",
			defaultStrategy: erasure.Strategy("shred"),
			wantErr:         erasure.ErrUnknownStrategy,
		},
		{
			name:            "unspecified default strategy",
			defaultStrategy: erasure.StrategyUnspecified,
			wantErr:         erasure.ErrUnknownStrategy,
		},
		{
			name:            "configured component without processors",
			defaultStrategy: erasure.StrategyDelete,
			anonymize:       []string{"wishlist"},
			wantErr:         erasure.ErrUnknownProcessor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anonymizePool := newTestPool(t, erasure.StrategyAnonymize, "customer", "order")
			deletePool := newTestPool(t, erasure.StrategyDelete, "customer", "order")

			registry := NewComponentStrategyRegistry(
				tt.defaultStrategy, tt.anonymize, tt.deletion, anonymizePool, deletePool)

			err := registry.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
