package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookfang/internal/observability"
)

func TestInit_NoEndpointIsNoop(t *testing.T) {
	cfg := observability.DefaultConfig()
	cfg.OTLPEndpoint = ""

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)
	require.NotNil(t, providers.Shutdown)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := observability.DefaultConfig()

	assert.Equal(t, "hookfang", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Positive(t, cfg.ShutdownTimeoutSec)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single pair", raw: "a=1", want: map[string]string{"a": "1"}},
		{
			name: "multiple pairs with spaces",
			raw:  "a=1, b = 2",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{name: "malformed", raw: "nonsense", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.raw))
		})
	}
}
