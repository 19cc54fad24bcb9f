package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tarper/pkg/buildinfo"
	"github.com/matzehuels/tarper/pkg/observability"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	// searchRuns counts finished strategy runs.
	// Labels: strategy, status (ok, error)
	searchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "runs_total",
		Help:      "Finished strategy runs",
	}, []string{"strategy", "status"})

	// searchActive tracks strategies currently running.
	searchActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "active_runs",
		Help:      "Strategy runs in progress",
	})

	// searchEvaluations counts cost oracle calls.
	// Labels: strategy, status (ok, error)
	searchEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "evaluations_total",
		Help:      "Cost oracle calls",
	}, []string{"strategy", "status"})

	// evaluationLatency measures how long one archive measurement takes.
	evaluationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "evaluation_seconds",
		Help:      "Time to build and compress one candidate archive",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"strategy"})

	// bestCost is the lowest cost seen by the latest run of each strategy.
	bestCost = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "best_cost_bytes",
		Help:      "Best compressed size found",
	}, []string{"strategy"})

	// improvements counts accepted new bests.
	improvements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "search",
		Name:      "improvements_total",
		Help:      "New best orderings accepted",
	}, []string{"strategy"})

	// prunedNodes counts search tree nodes removed by pruning.
	prunedNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "tree",
		Name:      "pruned_nodes_total",
		Help:      "Search tree nodes removed by pruning",
	}, []string{"strategy"})

	// treeLeaves is the leaf count after the latest prune.
	treeLeaves = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tarper",
		Subsystem: "tree",
		Name:      "leaves",
		Help:      "Search tree leaves after the latest prune",
	}, []string{"strategy"})

	// cacheOps counts cost cache operations.
	// Labels: key_type, op (hit, miss, set)
	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Cost cache operations",
	}, []string{"key_type", "op"})

	// cacheBytes counts bytes written to the cost cache.
	cacheBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarper",
		Subsystem: "cache",
		Name:      "written_bytes_total",
		Help:      "Bytes written to the cost cache",
	}, []string{"key_type"})

	// buildInfo exposes the binary version.
	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tarper",
		Name:      "build_info",
		Help:      "Build information",
	}, []string{"version", "commit"})
)

// =============================================================================
// Hook Implementations
// =============================================================================

// promSearchHooks records search events as Prometheus metrics.
type promSearchHooks struct{}

func (promSearchHooks) OnRunStart(context.Context, string, int) {
	searchActive.Inc()
}

func (promSearchHooks) OnRunComplete(_ context.Context, strategy string, _ int, best int64, _ time.Duration, err error) {
	searchActive.Dec()
	searchRuns.WithLabelValues(strategy, status(err)).Inc()
	if err == nil && best > 0 {
		bestCost.WithLabelValues(strategy).Set(float64(best))
	}
}

func (promSearchHooks) OnEvaluate(_ context.Context, strategy string, _ int64, d time.Duration, err error) {
	searchEvaluations.WithLabelValues(strategy, status(err)).Inc()
	if err == nil {
		evaluationLatency.WithLabelValues(strategy).Observe(d.Seconds())
	}
}

func (promSearchHooks) OnImprove(_ context.Context, strategy string, cost int64) {
	improvements.WithLabelValues(strategy).Inc()
	bestCost.WithLabelValues(strategy).Set(float64(cost))
}

func (promSearchHooks) OnPrune(_ context.Context, strategy string, removed, leaves int) {
	prunedNodes.WithLabelValues(strategy).Add(float64(removed))
	treeLeaves.WithLabelValues(strategy).Set(float64(leaves))
}

// promCacheHooks records cache events as Prometheus metrics.
type promCacheHooks struct{}

func (promCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (promCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (promCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	cacheOps.WithLabelValues(keyType, "set").Inc()
	cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var registerOnce sync.Once

// registerMetrics installs the Prometheus hooks. Safe to call more than once.
func registerMetrics() {
	registerOnce.Do(func() {
		observability.SetSearchHooks(promSearchHooks{})
		observability.SetCacheHooks(promCacheHooks{})
		buildInfo.WithLabelValues(buildinfo.Version, buildinfo.Commit).Set(1)
	})
}

// =============================================================================
// HTTP Endpoint
// =============================================================================

// metricsRouter exposes /metrics and a liveness probe.
func metricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// serveMetrics listens on addr and serves metricsRouter until ctx is done.
// Listen errors are returned; serve errors are only logged.
func serveMetrics(ctx context.Context, addr string, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           metricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())
	return nil
}
