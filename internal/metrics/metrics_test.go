package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollectorsGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(httpRequests))
	require.NoError(t, reg.Register(replies))
	require.NoError(t, reg.Register(preferenceUpdates))

	ObserveHTTP("/api/chat/send", http.MethodPost, http.StatusOK, 12*time.Millisecond)
	ObserveReply("offline", "", time.Millisecond, true)
	PreferenceUpdated("male")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["friendbot_http_requests_total"])
	require.True(t, names["friendbot_replies_total"])
	require.True(t, names["friendbot_preference_updates_total"])
}

func TestMustRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		MustRegister()
		MustRegister()
	})
}

func TestNorm(t *testing.T) {
	require.Equal(t, "unknown", norm(""))
	require.Equal(t, "x", norm("x"))
}
