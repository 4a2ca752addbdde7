package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "/repo")
	p.OnLoadComplete(ctx, "/repo", 10, 1, time.Second, nil)
	p.OnBuildComplete(ctx, 3, 9, 2, time.Second)
	p.OnResolveComplete(ctx, 2, 5, time.Second)
	p.OnReportComplete(ctx, "out-of-date", 4, time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "plan")
	c.OnCacheSet(ctx, "result", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/reports/{name}")
	h.OnResponse(ctx, "GET", "/v1/reports/{name}", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	prom := NewPrometheus(prometheus.NewRegistry())
	Install(prom)
	if Pipeline() != PipelineHooks(prom) {
		t.Error("Install should set pipeline hooks")
	}
	if Cache() != CacheHooks(prom) {
		t.Error("Install should set cache hooks")
	}
	if HTTP() != HTTPHooks(prom) {
		t.Error("Install should set HTTP hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	prom := NewPrometheus(prometheus.NewRegistry())
	SetPipelineHooks(prom)
	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(prom) {
		t.Error("SetPipelineHooks(nil) replaced registered hooks")
	}
}

func TestPrometheusCollects(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnLoadComplete(ctx, "/repo", 12, 2, time.Millisecond, nil)
	p.OnLoadComplete(ctx, "/missing", 0, 0, time.Millisecond, errors.New("boom"))
	p.OnBuildComplete(ctx, 4, 11, 3, time.Millisecond)
	p.OnResolveComplete(ctx, 0, 11, time.Millisecond)
	p.OnResolveComplete(ctx, 2, 7, time.Millisecond)
	p.OnReportComplete(ctx, "unused", 5, time.Millisecond)
	p.OnCacheHit(ctx, "result")
	p.OnCacheHit(ctx, "result")
	p.OnCacheMiss(ctx, "plan")
	p.OnCacheSet(ctx, "plan", 256)
	p.OnRequest(ctx, "GET", "/healthz")
	p.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"files", testutil.ToFloat64(p.loadedFiles), 12},
		{"failures", testutil.ToFloat64(p.loadFailures), 2},
		{"load errors", testutil.ToFloat64(p.stageErrors.WithLabelValues("load")), 1},
		{"groups", testutil.ToFloat64(p.graphGroups), 4},
		{"versions", testutil.ToFloat64(p.graphVersions), 11},
		{"diagnostics", testutil.ToFloat64(p.diagnostics), 3},
		{"used all", testutil.ToFloat64(p.usedItems.WithLabelValues("all")), 11},
		{"used keep 2", testutil.ToFloat64(p.usedItems.WithLabelValues("2")), 7},
		{"report", testutil.ToFloat64(p.reportItems.WithLabelValues("unused")), 5},
		{"cache hits", testutil.ToFloat64(p.cacheEvents.WithLabelValues("result", "hit")), 2},
		{"cache misses", testutil.ToFloat64(p.cacheEvents.WithLabelValues("plan", "miss")), 1},
		{"cache bytes", testutil.ToFloat64(p.cacheBytes.WithLabelValues("plan")), 256},
		{"inflight", testutil.ToFloat64(p.inflight), 0},
		{"requests", testutil.ToFloat64(p.requests.WithLabelValues("GET", "/healthz", "200")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(p.stageDuration); n != 4 {
		t.Errorf("stage duration series = %d, want 4", n)
	}
}
