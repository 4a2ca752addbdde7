package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements all hook interfaces on top of Prometheus collectors.
type Prometheus struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	loadedFiles   prometheus.Gauge
	loadFailures  prometheus.Gauge
	graphGroups   prometheus.Gauge
	graphVersions prometheus.Gauge
	diagnostics   prometheus.Gauge
	usedItems     *prometheus.GaugeVec
	reportItems   *prometheus.GaugeVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	inflight        prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus registers the spruce collectors on reg. Registering twice on
// the same registerer panics, as with promauto.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spruce_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spruce_stage_errors_total",
			Help: "Total pipeline stage failures",
		}, []string{"stage"}),
		loadedFiles: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_repo_files",
			Help: "Metadata files read by the last load",
		}),
		loadFailures: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_repo_load_failures",
			Help: "Metadata files that failed to load in the last load",
		}),
		graphGroups: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_graph_groups",
			Help: "Package groups in the last built graph",
		}),
		graphVersions: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_graph_versions",
			Help: "Package versions in the last built graph",
		}),
		diagnostics: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_graph_diagnostics",
			Help: "Diagnostics recorded for the last built graph",
		}),
		usedItems: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spruce_used_items",
			Help: "Reachable versions in the last resolve, by keep count",
		}, []string{"keep"}),
		reportItems: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spruce_report_items",
			Help: "Items in the last generated report",
		}, []string{"report"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spruce_cache_events_total",
			Help: "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spruce_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "spruce_http_inflight_requests",
			Help: "Requests currently being served",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spruce_http_requests_total",
			Help: "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spruce_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers p as the pipeline, cache and HTTP hooks.
func Install(p *Prometheus) {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func (p *Prometheus) OnLoadStart(context.Context, string) {}

func (p *Prometheus) OnLoadComplete(_ context.Context, _ string, files, failures int, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("load").Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues("load").Inc()
		return
	}
	p.loadedFiles.Set(float64(files))
	p.loadFailures.Set(float64(failures))
}

func (p *Prometheus) OnBuildComplete(_ context.Context, groups, versions, diagnostics int, d time.Duration) {
	p.stageDuration.WithLabelValues("build").Observe(d.Seconds())
	p.graphGroups.Set(float64(groups))
	p.graphVersions.Set(float64(versions))
	p.diagnostics.Set(float64(diagnostics))
}

func (p *Prometheus) OnResolveComplete(_ context.Context, keep, used int, d time.Duration) {
	p.stageDuration.WithLabelValues("resolve").Observe(d.Seconds())
	label := "all"
	if keep > 0 {
		label = strconv.Itoa(keep)
	}
	p.usedItems.WithLabelValues(label).Set(float64(used))
}

func (p *Prometheus) OnReportComplete(_ context.Context, report string, items int, d time.Duration) {
	p.stageDuration.WithLabelValues("report").Observe(d.Seconds())
	p.reportItems.WithLabelValues(report).Set(float64(items))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.inflight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.inflight.Dec()
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
