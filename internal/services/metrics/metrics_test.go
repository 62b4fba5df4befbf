package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveRank(t *testing.T) {
	before := counterValue(t, RankRequests.WithLabelValues("test"))

	ObserveRank("test", time.Now().Add(-time.Millisecond))
	ObserveRank("test", time.Now())

	assert.Equal(t, before+2, counterValue(t, RankRequests.WithLabelValues("test")))
}

func TestObserveProfileOp(t *testing.T) {
	okBefore := counterValue(t, ProfileOps.WithLabelValues("load", "ok"))
	errBefore := counterValue(t, ProfileOps.WithLabelValues("load", "error"))

	ObserveProfileOp("load", nil)
	ObserveProfileOp("load", errors.New("timeout"))
	ObserveProfileOp("load", errors.New("timeout"))

	assert.Equal(t, okBefore+1, counterValue(t, ProfileOps.WithLabelValues("load", "ok")))
	assert.Equal(t, errBefore+2, counterValue(t, ProfileOps.WithLabelValues("load", "error")))
}
