package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/pkg/config"
)

func TestInit_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.OtelConfig{ServiceName: "sucursales-api"}, "development")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
