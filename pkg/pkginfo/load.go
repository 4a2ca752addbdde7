package pkginfo

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
	"howett.net/plist"

	"github.com/matzehuels/spruce/pkg/repo"
)

// LoadError records a file that could not be used.
type LoadError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

func (e LoadError) Error() string { return e.Path + ": " + e.Err }

// Repository is the decoded contents of a repository root.
type Repository struct {
	Root        string
	Fingerprint string
	Pkgsinfo    map[string]*Record
	Manifests   map[string]*Manifest
	Errors      []LoadError
}

// LoadOptions configures [LoadRepository].
type LoadOptions struct {
	// Logger receives a warning per file that fails to load. Nil uses
	// log.Default().
	Logger *log.Logger
	// Stamps is a previous [Scan] of the same root. Nil rescans.
	Stamps []FileStamp
}

// LoadRepository decodes every metadata file under root. Only a missing or
// unreadable root is an error; per-file failures are collected in
// Repository.Errors.
func LoadRepository(ctx context.Context, root string, opts LoadOptions) (*Repository, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	stamps := opts.Stamps
	if stamps == nil {
		var err error
		if stamps, err = Scan(root); err != nil {
			return nil, err
		}
	}

	r := &Repository{
		Root:        root,
		Fingerprint: Fingerprint(stamps),
		Pkgsinfo:    make(map[string]*Record),
		Manifests:   make(map[string]*Manifest),
	}
	for _, st := range stamps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch st.Kind {
		case KindPkginfo:
			var rec Record
			if err = decodeFile(st.Path, &rec); err == nil {
				err = rec.Validate()
			}
			if err == nil {
				r.Pkgsinfo[st.Path] = &rec
			}
		case KindManifest:
			var m Manifest
			if err = decodeFile(st.Path, &m); err == nil {
				r.Manifests[st.Path] = &m
			}
		}
		if err != nil {
			logger.Warn("skipping file", "kind", st.Kind, "path", st.Path, "err", err)
			r.Errors = append(r.Errors, LoadError{Path: st.Path, Err: err.Error()})
		}
	}
	return r, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		_, err = plist.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// PkginfoPaths returns the decoded pkginfo paths in sorted order.
func (r *Repository) PkginfoPaths() []string {
	return slices.Sorted(maps.Keys(r.Pkgsinfo))
}

// ManifestList returns the decoded manifests ordered by path.
func (r *Repository) ManifestList() []*Manifest {
	out := make([]*Manifest, 0, len(r.Manifests))
	for _, p := range slices.Sorted(maps.Keys(r.Manifests)) {
		out = append(out, r.Manifests[p])
	}
	return out
}

// EntryPoints returns the items named by every manifest.
func (r *Repository) EntryPoints() []string {
	return EntryPoints(r.ManifestList())
}

// ArtifactPath returns the absolute path of an installer_item_location.
func (r *Repository) ArtifactPath(location string) string {
	return filepath.Join(r.Root, PkgsDir, filepath.FromSlash(location))
}

// ArtifactSize returns the on-disk size of rec's artifact when it exists,
// else installer_item_size converted to bytes.
func (r *Repository) ArtifactSize(rec *Record) int64 {
	if rec.InstallerItemLocation == "" {
		return 0
	}
	if info, err := os.Stat(r.ArtifactPath(rec.InstallerItemLocation)); err == nil {
		return info.Size()
	}
	return rec.SizeBytes()
}

// Records converts every decoded pkginfo into graph input.
func (r *Repository) Records() []repo.Record {
	out := make([]repo.Record, 0, len(r.Pkgsinfo))
	for _, p := range r.PkginfoPaths() {
		rec := r.Pkgsinfo[p]
		out = append(out, rec.ToRepo(p, r.ArtifactSize(rec)))
	}
	return out
}

// Record returns the pkginfo decoded from path.
func (r *Repository) Record(path string) (*Record, bool) {
	rec, ok := r.Pkgsinfo[path]
	return rec, ok
}
