package repo

import (
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spruce/pkg/version"
)

// Unbounded is the Keep value that retains every reachable version.
const Unbounded = 0

// Query describes one usage-reachability run.
type Query struct {
	// EntryPoints are bare names or name-version references collected from
	// deployment manifests.
	EntryPoints []string
	// Keep caps how many eligible versions of each entry point are walked per
	// simulated OS release. Zero or negative means [Unbounded].
	Keep int
	// Channels restricts which versions of an entry point are eligible. An
	// empty filter admits every version. Transitive edges are never filtered.
	Channels []string
	// Matrix lists the simulated OS releases. A zero matrix means
	// [DefaultOSMatrix].
	Matrix OSMatrix
	// Workers bounds how many OS releases are swept concurrently. Zero means
	// GOMAXPROCS. The result does not depend on this value.
	Workers int
}

func (q Query) withDefaults() Query {
	if q.Keep < 0 {
		q.Keep = Unbounded
	}
	if q.Matrix.IsZero() {
		q.Matrix = DefaultOSMatrix()
	}
	if q.Workers <= 0 {
		q.Workers = runtime.GOMAXPROCS(0)
	}
	return q
}

// UsedItems returns the versions considered in use for the given entry
// points, retention cap and channel filter, sweeping the default OS matrix.
// See [PackageGraph.Resolve].
func (g *PackageGraph) UsedItems(entryPoints []string, keep int, channels []string) Set {
	return g.Resolve(Query{EntryPoints: entryPoints, Keep: keep, Channels: channels})
}

// Resolve computes the used-set for q.
//
// For every entry point and every simulated OS release, the eligible
// candidates (OS range contains the release, channel filter satisfied) are
// walked newest first. Each eligible candidate counts towards the Keep cap.
// A candidate seen for the first time at this release is added to the
// used-set and its requires and updates edges are followed with the same
// cap and no channel filter: a group edge expands like a bare name, a
// version edge like an exact name-version. A version is expanded at most
// once per release, which makes dependency cycles terminate.
//
// Entry points that do not exist, and entry points with no eligible version
// at any release, are recorded in the graph's diagnostics.
//
// Resolve panics if g was not produced by [Build].
func (g *PackageGraph) Resolve(q Query) Set {
	g.mustBeBuilt()
	q = q.withDefaults()

	refs := g.entryReferences(q.EntryPoints)
	releases := q.Matrix.Releases()

	sweeps := make([]sweep, len(releases))
	var eg errgroup.Group
	eg.SetLimit(q.Workers)
	for i, os := range releases {
		eg.Go(func() error {
			sweeps[i] = g.sweep(refs, os, q.Keep, q.Channels)
			return nil
		})
	}
	_ = eg.Wait()

	used := make(Set)
	eligible := make([]bool, len(refs))
	for _, s := range sweeps {
		used.Merge(s.used)
		for i, ok := range s.eligible {
			eligible[i] = eligible[i] || ok
		}
	}

	for i, ref := range refs {
		if eligible[i] {
			continue
		}
		if len(q.Channels) > 0 {
			g.diags.Addf(KindZeroReachability,
				"Zero items were found for manifest item '%s' for a supported OS version in catalogs %s.",
				ref, strings.Join(q.Channels, ", "))
			continue
		}
		g.diags.Addf(KindZeroReachability,
			"Zero items were found for manifest item '%s' for a supported OS version.", ref)
	}
	return used
}

// entryReferences parses, deduplicates and sorts the entry points, recording
// a diagnostic for every one that does not resolve.
func (g *PackageGraph) entryReferences(entryPoints []string) []Reference {
	raws := slices.Clone(entryPoints)
	slices.Sort(raws)
	raws = slices.Compact(raws)

	refs := make([]Reference, 0, len(raws))
	for _, raw := range raws {
		ref := ParseReference(raw)
		grp, ok := g.groups[ref.Name]
		if !ok {
			if name, suffix, found := g.versionLike(raw); found {
				g.diags.Addf(KindMalformedReference,
					"Manifest item '%s' looks like version '%s' of '%s', but versions must start with a digit.",
					raw, suffix, name)
				continue
			}
			g.diags.Addf(KindDanglingReference,
				"'%s' does not exist in the repo, but is specified in a manifest.", raw)
			continue
		}
		if ref.HasVersion() && !grp.Has(ref.Version) {
			g.diags.Addf(KindDanglingReference,
				"'%s-%s' does not exist in the repo, but is specified in a manifest.", ref.Name, ref.Version)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// sweep is the outcome of walking every entry point at one OS release.
type sweep struct {
	used     Set
	eligible []bool
}

func (g *PackageGraph) sweep(refs []Reference, os version.Version, keep int, channels []string) sweep {
	w := &walker{
		g:        g,
		os:       os,
		keep:     keep,
		used:     make(Set),
		expanded: make(map[ID]bool),
	}
	s := sweep{eligible: make([]bool, len(refs))}
	for i, ref := range refs {
		s.eligible[i] = w.visit(ref, channels)
	}
	s.used = w.used
	return s
}

// walker performs the traversal for a single simulated OS release. It is
// confined to one goroutine.
type walker struct {
	g        *PackageGraph
	os       version.Version
	keep     int
	used     Set
	expanded map[ID]bool
}

// visit walks the candidates of ref and reports whether any was eligible.
func (w *walker) visit(ref Reference, channels []string) bool {
	grp := w.g.groups[ref.Name]
	candidates := grp.Descending()
	if ref.HasVersion() {
		v, err := grp.Get(ref.Version)
		if err != nil {
			return false
		}
		candidates = []*PackageVersion{v}
	}

	eligible := false
	count := 0
	for _, v := range candidates {
		if !v.os.Contains(w.os) || !v.InChannels(channels) {
			continue
		}
		eligible = true
		count++
		if !w.expanded[v.id] {
			w.expanded[v.id] = true
			w.used.Add(v)
			w.expand(v)
		}
		if w.keep > 0 && count >= w.keep {
			break
		}
	}
	return eligible
}

func (w *walker) expand(v *PackageVersion) {
	for _, t := range v.requires {
		w.visit(t.Reference(), nil)
	}
	for _, id := range v.updates {
		w.visit(w.g.versions[id].Reference(), nil)
	}
}
