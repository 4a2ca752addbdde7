package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/pipeline"
	"github.com/matzehuels/spruce/pkg/repo"
	"github.com/matzehuels/spruce/pkg/report"
	"github.com/matzehuels/spruce/pkg/store"
)

// CacheHeader reports whether a result came from the pipeline cache.
const CacheHeader = "X-Spruce-Cache"

// ReportResponse is the body of GET /v1/reports/{name}.
type ReportResponse struct {
	RunID string `json:"run_id,omitempty"`
	*pipeline.Result
}

// DiagnosticsResponse is the body of GET /v1/diagnostics.
type DiagnosticsResponse struct {
	Fingerprint string            `json:"fingerprint"`
	Diagnostics []repo.Diagnostic `json:"diagnostics"`
}

// PackageResponse is the body of GET /v1/packages/{name}.
type PackageResponse struct {
	Name     string           `json:"name"`
	Versions []PackageVersion `json:"versions"`
}

// PackageVersion describes one version of a package.
type PackageVersion struct {
	Version    string   `json:"version"`
	Channels   []string `json:"channels,omitempty"`
	MinOS      string   `json:"min_os"`
	MaxOS      string   `json:"max_os"`
	Requires   []string `json:"requires,omitempty"`
	RequiredBy []string `json:"required_by,omitempty"`
	UpdateFor  []string `json:"update_for,omitempty"`
	Updates    []string `json:"updates,omitempty"`
	Path       string   `json:"path"`
	Artifact   string   `json:"artifact,omitempty"`
	Size       int64    `json:"size,omitempty"`
	Used       bool     `json:"used"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	// The unused report resolves every entry point without filters, which
	// surfaces all entry-point diagnostics.
	opts.Reports = []report.Name{report.NameUnused}
	res, err := s.runner.Run(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	diags := res.Diagnostics
	if diags == nil {
		diags = []repo.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, DiagnosticsResponse{Fingerprint: res.Fingerprint, Diagnostics: diags})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name, err := report.ParseName(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Reports = []report.Name{name}
	opts.Refresh = r.URL.Query().Get("refresh") == "true"

	res, err := s.runner.Run(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ReportResponse{Result: res}
	if s.history && opts.ValidateAndSetDefaults() == nil {
		run := res.HistoryRun("api", opts)
		if err := s.store.Save(r.Context(), run); err != nil {
			s.logger.Warn("saving run failed", "err", err)
		} else {
			resp.RunID = run.ID
		}
	}
	if res.CacheHit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	st, err := s.runner.Load(r.Context(), s.opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Products(st.Graph, r.URL.Query().Get("q")))
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidatePackageName(name); err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	grp, ok := st.Graph.Group(name)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodePackageNotFound, "package %q not found", name))
		return
	}
	used, err := s.runner.Used(r.Context(), st, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := PackageResponse{Name: grp.Name()}
	for _, v := range grp.Descending() {
		rng := v.OSRange()
		resp.Versions = append(resp.Versions, PackageVersion{
			Version:    v.Version(),
			Channels:   v.Channels(),
			MinOS:      rng.Min.String(),
			MaxOS:      rng.Max.String(),
			Requires:   targetStrings(v.Requires()),
			RequiredBy: versionStrings(st.Graph.VersionsOf(v.RequiredBy())),
			UpdateFor:  targetStrings(v.UpdateFor()),
			Updates:    versionStrings(st.Graph.VersionsOf(v.Updates())),
			Path:       v.MetadataPath(),
			Artifact:   v.ArtifactPath(),
			Size:       v.ArtifactSize(),
			Used:       used.Contains(v),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", raw))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		s.writeError(w, err)
		return
	}
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// queryOptions applies ?keep= and ?channel= to the base options.
func (s *Server) queryOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	if raw := q.Get("keep"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid keep %q", raw)
		}
		if err := errors.ValidateKeep(n); err != nil {
			return opts, err
		}
		opts.Keep = n
	}
	if channels := q["channel"]; len(channels) > 0 {
		opts.Channels = nil
		for _, c := range channels {
			for _, part := range strings.Split(c, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				if err := errors.ValidateChannel(part); err != nil {
					return opts, err
				}
				opts.Channels = append(opts.Channels, part)
			}
		}
	}
	return opts, nil
}

func targetStrings(ts []repo.Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func versionStrings(vs []*repo.PackageVersion) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.ClassOf(err) == errors.ClassInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
