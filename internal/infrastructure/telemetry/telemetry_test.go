package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocontrol/agrocontrol-api/pkg/config"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "agrocontrol-api", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_EnabledBuildsProviders(t *testing.T) {
	// Los exportadores HTTP no conectan hasta el primer envío.
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true, Endpoint: "127.0.0.1:4318"}, "agrocontrol-api", "test")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
