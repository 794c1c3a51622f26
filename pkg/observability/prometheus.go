package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records every hook event as a Prometheus metric.
type Prometheus struct {
	resolveTotal      *prometheus.CounterVec
	resolveDuration   prometheus.Histogram
	resolveConfidence prometheus.Histogram
	conflicts         prometheus.Histogram
	buildNodes        prometheus.Histogram
	buildDuration     prometheus.Histogram
	unresolved        prometheus.Counter

	lookupTotal    *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	retryTotal     *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

// NewPrometheus creates the stacksolve metrics and registers them with reg.
// It panics if any metric is already registered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_resolve_total",
				Help: "Number of resolutions by search method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		resolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stacksolve_resolve_duration_seconds",
				Help:    "Time taken to resolve a request.",
				Buckets: prometheus.DefBuckets,
			},
		),
		resolveConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stacksolve_resolve_confidence",
				Help:    "Confidence of successful resolutions.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		conflicts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stacksolve_resolve_conflicts",
				Help:    "Conflicts (including cycles) found per resolution.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		buildNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stacksolve_graph_nodes",
				Help:    "Packages in each built dependency graph.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stacksolve_graph_build_duration_seconds",
				Help:    "Time taken to build a dependency graph.",
				Buckets: prometheus.DefBuckets,
			},
		),
		unresolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stacksolve_unresolved_packages_total",
				Help: "Transitive packages left unresolved after retries.",
			},
		),
		lookupTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_store_lookups_total",
				Help: "Metadata store lookups by source, operation and outcome.",
			},
			[]string{"source", "op", "outcome"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stacksolve_store_lookup_duration_seconds",
				Help:    "Time taken by metadata store lookups.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "op"},
		),
		retryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_store_retries_total",
				Help: "Retried metadata store lookups by source.",
			},
			[]string{"source"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_cache_hits_total",
				Help: "Cache hits by key type.",
			},
			[]string{"key_type"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_cache_misses_total",
				Help: "Cache misses by key type.",
			},
			[]string{"key_type"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stacksolve_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
	}
	reg.MustRegister(
		p.resolveTotal,
		p.resolveDuration,
		p.resolveConfidence,
		p.conflicts,
		p.buildNodes,
		p.buildDuration,
		p.unresolved,
		p.lookupTotal,
		p.lookupDuration,
		p.retryTotal,
		p.cacheHits,
		p.cacheMisses,
		p.cacheBytes,
	)
	return p
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnResolveStart(context.Context, int) {}

func (p *Prometheus) OnBuildComplete(_ context.Context, nodes int, d time.Duration, err error) {
	p.buildDuration.Observe(d.Seconds())
	if err == nil {
		p.buildNodes.Observe(float64(nodes))
	}
}

func (p *Prometheus) OnResolveComplete(_ context.Context, s ResolveSummary, d time.Duration, err error) {
	p.resolveTotal.WithLabelValues(s.Method, outcome(err)).Inc()
	p.resolveDuration.Observe(d.Seconds())
	if err != nil {
		return
	}
	p.resolveConfidence.Observe(s.Confidence)
	p.conflicts.Observe(float64(s.Conflicts + s.Cycles))
	p.unresolved.Add(float64(s.Unresolved))
}

func (p *Prometheus) OnLookup(_ context.Context, source, op string, d time.Duration, err error) {
	p.lookupTotal.WithLabelValues(source, op, outcome(err)).Inc()
	p.lookupDuration.WithLabelValues(source, op).Observe(d.Seconds())
}

func (p *Prometheus) OnRetry(_ context.Context, source, _ string, _ int, _ error) {
	p.retryTotal.WithLabelValues(source).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheHits.WithLabelValues(keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheMisses.WithLabelValues(keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ ResolveHooks = (*Prometheus)(nil)
	_ StoreHooks   = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
)
