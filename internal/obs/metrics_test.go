package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordAuthzDecision(t *testing.T) {
	before := testutil.ToFloat64(authzDecisions.WithLabelValues(DecisionDenied))
	RecordAuthzDecision(DecisionDenied)
	RecordAuthzDecision(DecisionDenied)
	require.Equal(t, before+2, testutil.ToFloat64(authzDecisions.WithLabelValues(DecisionDenied)))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "hit"))
	misses := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "miss"))

	RecordCacheLookup("memory", true)
	RecordCacheLookup("memory", false)
	RecordCacheLookup("memory", false)

	require.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "hit")))
	require.Equal(t, misses+2, testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "miss")))
}

func TestInitIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Init()
		Init()
	})
}
