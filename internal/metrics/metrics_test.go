package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordAggregation("account", 3)
	m.RecordActionMapping("budget_reallocation", "")
	m.RecordActionMapping("bid_adjustment", "increase_budget")
	m.RecordBuildSubmitted("google", false)
	m.RecordBackendCall("set_status", true, 20*time.Millisecond)
	m.UpdateDBStats(2, 3, 5)

	if v := testutil.ToFloat64(m.Aggregations.WithLabelValues("account")); v != 1 {
		t.Fatalf("expected one aggregation, got %v", v)
	}
	if v := testutil.ToFloat64(m.ActionMappings.WithLabelValues("budget_reallocation", "manual")); v != 1 {
		t.Fatalf("expected empty action type to count as manual, got %v", v)
	}
	if v := testutil.ToFloat64(m.BuildsSubmitted.WithLabelValues("google", "failure")); v != 1 {
		t.Fatalf("expected one failed submission, got %v", v)
	}
	if v := testutil.ToFloat64(m.DBConnections.WithLabelValues("total")); v != 5 {
		t.Fatalf("expected total 5, got %v", v)
	}
	if n := testutil.CollectAndCount(m.BackendLatency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics("vi", prometheus.NewRegistry())
	m.RecordToggle("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `vi_status_toggles_total{outcome="success"} 1`) {
		t.Fatalf("toggle counter missing from exposition:\n%s", body)
	}
}

func TestInstancesDoNotShareState(t *testing.T) {
	a := NewMetrics("test", prometheus.NewRegistry())
	b := NewMetrics("test", prometheus.NewRegistry())

	a.RecordRateLimitHit("mutation")
	if v := testutil.ToFloat64(b.RateLimitHits.WithLabelValues("mutation")); v != 0 {
		t.Fatalf("expected a separate instance to stay at zero, got %v", v)
	}
	if v := testutil.ToFloat64(a.RateLimitHits.WithLabelValues("mutation")); v != 1 {
		t.Fatalf("expected one hit, got %v", v)
	}
}
