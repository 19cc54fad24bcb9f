package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/tarper/pkg/observability"
)

func TestPromSearchHooks(t *testing.T) {
	h := promSearchHooks{}
	ctx := context.Background()

	before := testutil.ToFloat64(searchEvaluations.WithLabelValues("metricstest", "ok"))
	h.OnRunStart(ctx, "metricstest", 4)
	h.OnEvaluate(ctx, "metricstest", 100, time.Millisecond, nil)
	h.OnEvaluate(ctx, "metricstest", 0, time.Millisecond, errors.New("boom"))
	h.OnImprove(ctx, "metricstest", 90)
	h.OnPrune(ctx, "metricstest", 12, 5)
	h.OnRunComplete(ctx, "metricstest", 2, 90, time.Second, nil)

	if got := testutil.ToFloat64(searchEvaluations.WithLabelValues("metricstest", "ok")) - before; got != 1 {
		t.Errorf("ok evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bestCost.WithLabelValues("metricstest")); got != 90 {
		t.Errorf("best cost = %v, want 90", got)
	}
	if got := testutil.ToFloat64(treeLeaves.WithLabelValues("metricstest")); got != 5 {
		t.Errorf("leaves = %v, want 5", got)
	}
}

func TestRegisterMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	registerMetrics()
	registerMetrics()

	if _, ok := observability.Search().(promSearchHooks); !ok {
		t.Errorf("search hooks = %T, want promSearchHooks", observability.Search())
	}
	if _, ok := observability.Cache().(promCacheHooks); !ok {
		t.Errorf("cache hooks = %T, want promCacheHooks", observability.Cache())
	}
}

func TestMetricsRouter(t *testing.T) {
	promCacheHooks{}.OnCacheHit(context.Background(), "cost")

	srv := httptest.NewServer(metricsRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "tarper_cache_operations_total") {
		t.Error("/metrics does not expose tarper metrics")
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}
