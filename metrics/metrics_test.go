package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCommandsTotalLabels(t *testing.T) {
	c := CommandsTotal.WithLabelValues("folders:create:input", StatusOK)
	before := testutil.ToFloat64(c)
	c.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandsTotal", CommandsTotal},
		{"CommandDuration", CommandDuration},
		{"WebSocketConnections", WebSocketConnections},
		{"FolderDetailsDuration", FolderDetailsDuration},
		{"PlaylistWriteConflicts", PlaylistWriteConflicts},
		{"CacheRequests", CacheRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.metric)
		})
	}
}
