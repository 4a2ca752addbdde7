package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/spruce/pkg/cache"
	"github.com/matzehuels/spruce/pkg/observability"
	"github.com/matzehuels/spruce/pkg/pipeline"
	"github.com/matzehuels/spruce/pkg/repo"
	"github.com/matzehuels/spruce/pkg/store"
)

var fixture = map[string]string{
	"pkgsinfo/Foo-1.0.yaml":       "name: Foo\nversion: \"1.0\"\ncatalogs: [production]\n",
	"pkgsinfo/Foo-2.0.yaml":       "name: Foo\nversion: \"2.0\"\ncatalogs: [production]\n",
	"pkgsinfo/Foo-3.0.yaml":       "name: Foo\nversion: \"3.0\"\ncatalogs: [production]\n",
	"pkgsinfo/Bar-1.0.yaml":       "name: Bar\nversion: \"1.0\"\ncatalogs: [production]\nrequires: [Foo]\n",
	"manifests/site_default.yaml": "managed_installs: [Foo, Bar, Missing]\n",
}

type testEnv struct {
	srv *httptest.Server
	reg *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	for rel, content := range fixture {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logger := log.New(io.Discard)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	observability.Install(observability.NewPrometheus(reg))
	t.Cleanup(observability.Reset)

	s := New(Config{
		Runner:   pipeline.NewRunner(fc, nil, logger),
		Store:    st,
		Options:  pipeline.Options{RepoPath: root, Keep: 1},
		Logger:   logger,
		Gatherer: reg,
	})
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, reg: reg}
}

func (e *testEnv) get(t *testing.T, path string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
	return resp
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]string
	resp := env.get(t, "/healthz", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", resp.StatusCode, body)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if got := resp2.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestReportEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var first ReportResponse
	resp := env.get(t, "/v1/reports/out-of-date?keep=1&channel=production", &first)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(CacheHeader) != "miss" {
		t.Errorf("first request cache header = %q", resp.Header.Get(CacheHeader))
	}
	if len(first.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(first.Reports))
	}
	var got []string
	for _, it := range first.Reports[0].Items {
		got = append(got, it.Name+"-"+it.Version)
	}
	if strings.Join(got, ",") != "Foo-2.0,Foo-1.0" {
		t.Errorf("items = %v", got)
	}
	if first.RunID == "" {
		t.Error("run was not recorded")
	}

	var second ReportResponse
	resp = env.get(t, "/v1/reports/out-of-date?keep=1&channel=production", &second)
	if resp.Header.Get(CacheHeader) != "hit" {
		t.Errorf("second request cache header = %q", resp.Header.Get(CacheHeader))
	}

	var runs []store.Run
	env.get(t, "/v1/runs", &runs)
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
	var run store.Run
	if resp := env.get(t, "/v1/runs/"+first.RunID, &run); resp.StatusCode != http.StatusOK || run.ID != first.RunID {
		t.Errorf("run lookup = %d %+v", resp.StatusCode, run)
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		path string
		want int
		code string
	}{
		{"/v1/reports/bogus", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/reports/unused?keep=x", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/reports/unused?keep=-1", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/packages/Nope", http.StatusNotFound, "PACKAGE_NOT_FOUND"},
		{"/v1/packages/a..b", http.StatusBadRequest, "INVALID_PACKAGE"},
		{"/v1/reports/unused?channel=a/b", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/runs/not-a-uuid", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/runs/" + uuid.NewString(), http.StatusNotFound, "RUN_NOT_FOUND"},
		{"/v1/runs?limit=-3", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var body errorResponse
			resp := env.get(t, tt.path, &body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if string(body.Code) != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestPackageEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var pkg PackageResponse
	if resp := env.get(t, "/v1/packages/Foo", &pkg); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(pkg.Versions) != 3 || pkg.Versions[0].Version != "3.0" {
		t.Fatalf("versions = %+v", pkg.Versions)
	}
	for _, v := range pkg.Versions {
		if want := v.Version == "3.0"; v.Used != want {
			t.Errorf("Foo-%s used = %v, want %v", v.Version, v.Used, want)
		}
	}
	if pkg.Versions[0].MinOS != repo.DefaultMinOS || pkg.Versions[0].MaxOS != repo.DefaultMaxOS {
		t.Errorf("os range = %s..%s", pkg.Versions[0].MinOS, pkg.Versions[0].MaxOS)
	}

	var keepAll PackageResponse
	env.get(t, "/v1/packages/Foo?keep=0", &keepAll)
	for _, v := range keepAll.Versions {
		if !v.Used {
			t.Errorf("keep=0: Foo-%s not used", v.Version)
		}
	}

	var products []struct {
		Name     string   `json:"name"`
		Versions []string `json:"versions"`
	}
	env.get(t, "/v1/packages?q=fo", &products)
	if len(products) != 1 || products[0].Name != "Foo" {
		t.Errorf("products = %+v", products)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var body DiagnosticsResponse
	if resp := env.get(t, "/v1/diagnostics", &body); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	found := false
	for _, d := range body.Diagnostics {
		if d.Kind == repo.KindDanglingReference && strings.Contains(d.Message, "Missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("no dangling diagnostic for Missing in %+v", body.Diagnostics)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/healthz", nil)

	resp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	want := `spruce_http_requests_total{method="GET",route="/healthz",status="200"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("metrics missing %q:\n%s", want, data)
	}
}
