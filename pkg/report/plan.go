package report

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/repo"
)

// PlanOptions selects what a removal plan removes. The selections are
// combined.
type PlanOptions struct {
	// Level removes every version reachable without a cap but not within
	// the newest Level versions, restricted to the input's channels.
	// Zero disables automatic selection.
	Level int
	// Names removes every version of the named packages.
	Names []string
	// Categories removes every version whose metadata has one of these
	// categories. Requires Input.Repo.
	Categories []string
	// Paths removes the versions whose metadata file is one of these
	// paths. Relative paths are resolved against Input.Repo's root when
	// present. Any other path is passed through as a raw artifact.
	Paths []string
}

// Plan is a proposed removal.
type Plan struct {
	Removals Report `json:"removals"`
	// ManifestRemovals are names with no version left after the removal;
	// manifests should stop referencing them.
	ManifestRemovals []string `json:"manifest_removals"`
	// Warnings flag retained versions whose artifact is also used by a
	// removed version.
	Warnings []string `json:"warnings"`
	// Artifacts are selected paths that name no metadata file.
	Artifacts []string `json:"artifacts"`

	set repo.Set
}

// Set returns the versions the plan removes.
func (p Plan) Set() repo.Set { return p.set }

// BuildPlan computes a removal plan. It fails with an INVALID_INPUT error
// when opts selects nothing.
func BuildPlan(in Input, opts PlanOptions) (Plan, error) {
	if opts.Level < 0 {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput, "plan level must be positive, got %d", opts.Level)
	}
	if opts.Level == 0 && len(opts.Names) == 0 && len(opts.Categories) == 0 && len(opts.Paths) == 0 {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput, "nothing selected for removal")
	}
	if len(opts.Categories) > 0 && in.Repo == nil {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput, "category selection needs repository metadata")
	}

	removals := repo.NewSet()
	if opts.Level > 0 {
		auto := in
		auto.Keep = opts.Level
		removals.Merge(OutOfDateSet(auto))
	}
	for _, name := range opts.Names {
		if grp, ok := in.Graph.Group(name); ok {
			for v := range grp.All() {
				removals.Add(v)
			}
		}
	}
	if len(opts.Categories) > 0 {
		for _, v := range in.Graph.Versions() {
			rec, ok := in.Repo.Record(v.MetadataPath())
			if ok && slices.Contains(opts.Categories, rec.CategoryName()) {
				removals.Add(v)
			}
		}
	}

	artifacts := selectPaths(in, opts.Paths, removals)

	plan := Plan{
		Removals:         newReport(NameRemovalPlan, setItems(removals)),
		ManifestRemovals: vanishingNames(in.Graph, removals),
		Warnings:         sharedArtifactWarnings(in.Graph, removals),
		Artifacts:        artifacts,
		set:              removals,
	}
	return plan, nil
}

// selectPaths adds the versions named by metadata path to removals and
// returns the remaining paths, sorted and deduplicated.
func selectPaths(in Input, paths []string, removals repo.Set) []string {
	byPath := make(map[string]*repo.PackageVersion)
	if len(paths) > 0 {
		for _, v := range in.Graph.Versions() {
			byPath[v.MetadataPath()] = v
		}
	}
	out := []string{}
	for _, p := range paths {
		v, ok := byPath[p]
		if !ok && in.Repo != nil && !filepath.IsAbs(p) {
			v, ok = byPath[filepath.Join(in.Repo.Root, p)]
		}
		if ok {
			removals.Add(v)
			continue
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// vanishingNames returns the names of removed versions for which no other
// metadata file remains.
func vanishingNames(g *repo.PackageGraph, removals repo.Set) []string {
	remaining := make(map[string]bool)
	for _, v := range g.Versions() {
		if !removals.Contains(v) {
			remaining[v.Name()] = true
		}
	}
	names := make(map[string]bool)
	for _, v := range removals {
		if !remaining[v.Name()] {
			names[v.Name()] = true
		}
	}
	out := slices.Sorted(maps.Keys(names))
	if out == nil {
		out = []string{}
	}
	return out
}

func sharedArtifactWarnings(g *repo.PackageGraph, removals repo.Set) []string {
	removed := make(map[string]bool)
	for _, v := range removals {
		if v.HasArtifact() {
			removed[v.ArtifactPath()] = true
		}
	}
	out := []string{}
	for _, v := range g.Versions() {
		if removals.Contains(v) || !v.HasArtifact() || !removed[v.ArtifactPath()] {
			continue
		}
		out = append(out, fmt.Sprintf(
			"Package '%s' is targeted for removal, but has references in pkginfo '%s' which is not targeted for removal.",
			v.ArtifactPath(), v.MetadataPath()))
	}
	slices.Sort(out)
	return out
}
