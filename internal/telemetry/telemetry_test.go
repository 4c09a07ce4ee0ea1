package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitOtel_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), "", "fatty-hosting")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}
