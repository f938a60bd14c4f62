package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsStoreHooks(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.OnIntern("a", true)
	m.OnIntern("a", false)
	m.OnIntern("b", true)
	m.OnDelete("a")

	if got := testutil.ToFloat64(m.InternsTotal.WithLabelValues("true")); got != 2 {
		t.Errorf("created interns = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.InternsTotal.WithLabelValues("false")); got != 1 {
		t.Errorf("existing interns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DeletesTotal); got != 1 {
		t.Errorf("deletes = %v, want 1", got)
	}
}

func TestMetricsRebalance(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.OnRebalance("height", 7, time.Millisecond, nil)
	m.OnRebalance("hybrid", 3, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.RebalancesTotal.WithLabelValues("height", "success")); got != 1 {
		t.Errorf("successful rebalances = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RebalancesTotal.WithLabelValues("hybrid", "error")); got != 1 {
		t.Errorf("failed rebalances = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IndexSize); got != 7 {
		t.Errorf("index size = %v, want 7 from the last successful rebuild", got)
	}
}

func TestMetricsWalk(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.OnWalk("depth_first", "children_first", 4, 1, time.Millisecond)
	m.OnWalk("depth_first", "children_first", 2, 2, time.Millisecond)

	if got := testutil.ToFloat64(m.WalksTotal.WithLabelValues("depth_first", "children_first")); got != 2 {
		t.Errorf("walks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RevisitsTotal); got != 3 {
		t.Errorf("revisits = %v, want 3", got)
	}
}

func TestMetricsRegister(t *testing.T) {
	defer Reset()
	m := NewMetrics(prometheus.NewRegistry())
	m.Register()

	Store().OnIntern("x", true)
	Walk().OnWalk("breadth_first", "parents_first", 1, 0, 0)

	if got := testutil.ToFloat64(m.InternsTotal.WithLabelValues("true")); got != 1 {
		t.Errorf("global store hook not wired: %v", got)
	}
	if got := testutil.ToFloat64(m.WalksTotal.WithLabelValues("breadth_first", "parents_first")); got != 1 {
		t.Errorf("global walk hook not wired: %v", got)
	}
}

func TestNewMetricsSeparateRegistries(t *testing.T) {
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
