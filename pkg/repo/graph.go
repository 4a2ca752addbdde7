package repo

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/spruce/pkg/version"
)

// Default OS bounds applied to versions that do not declare their own.
const (
	DefaultMinOS = "10.4.0"
	DefaultMaxOS = "10.12.99"
)

// Record is the flat input describing one package version. It is produced
// by a metadata loader; the graph never looks at the source format.
type Record struct {
	MetadataPath string
	Name         string
	Version      string
	Requires     []string
	UpdateFor    []string
	Channels     []string
	MinOSVersion string
	MaxOSVersion string
	ArtifactPath string
	ArtifactSize int64
}

// BuildOptions configures graph construction.
type BuildOptions struct {
	// DefaultMinOS is used when a record has no minimum OS version.
	DefaultMinOS string
	// DefaultMaxOS is used when a record has no maximum OS version.
	DefaultMaxOS string
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (o BuildOptions) WithDefaults() BuildOptions {
	if o.DefaultMinOS == "" {
		o.DefaultMinOS = DefaultMinOS
	}
	if o.DefaultMaxOS == "" {
		o.DefaultMaxOS = DefaultMaxOS
	}
	return o
}

// PackageGraph owns every PackageGroup and the versions they contain, plus
// the diagnostics found while building and querying it.
//
// The zero value is not usable; use [Build]. After Build returns the graph
// is read-only except for its diagnostics accumulator, so concurrent
// queries are safe.
type PackageGraph struct {
	groups   map[string]*PackageGroup
	versions []*PackageVersion
	diags    *Diagnostics
	built    bool
}

// Build constructs a graph from records in two phases: every version is
// created first, then all requires and update_for references are linked
// against the complete set. Construction never fails; every inconsistency
// is recorded in [PackageGraph.Diagnostics].
//
// Records are processed in MetadataPath order so the result does not
// depend on the order of the input slice.
func Build(records []Record, opts BuildOptions) *PackageGraph {
	opts = opts.WithDefaults()
	g := &PackageGraph{
		groups: make(map[string]*PackageGroup),
		diags:  &Diagnostics{},
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return strings.Compare(a.MetadataPath, b.MetadataPath)
	})

	loaded := g.load(sorted, opts)
	g.link(loaded)
	g.built = true
	return g
}

// load creates one unlinked version per valid record and returns the
// records aligned with g.versions.
func (g *PackageGraph) load(records []Record, opts BuildOptions) []Record {
	loaded := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Name == "" || r.Version == "" {
			g.diags.Addf(KindInvalidRecord, "'%s' has no name or no version and was skipped.", r.MetadataPath)
			continue
		}
		v := &PackageVersion{
			id:           ID(len(g.versions)),
			name:         r.Name,
			version:      version.Parse(r.Version),
			os:           version.NewRange(r.MinOSVersion, r.MaxOSVersion, opts.DefaultMinOS, opts.DefaultMaxOS),
			channels:     slices.Clone(r.Channels),
			size:         r.ArtifactSize,
			metadataPath: r.MetadataPath,
			artifactPath: r.ArtifactPath,
		}
		g.versions = append(g.versions, v)
		loaded = append(loaded, r)

		grp, ok := g.groups[r.Name]
		if !ok {
			grp = &PackageGroup{name: r.Name}
			g.groups[r.Name] = grp
		}
		if existing, err := grp.Get(r.Version); err == nil {
			v.shadowed = true
			g.diags.Addf(KindDuplicateVersion,
				"More than one pkg with version '%s': '%s' is shadowed by '%s'.",
				v, v.metadataPath, existing.metadataPath)
			continue
		}
		grp.insert(v)
	}
	return loaded
}

func (g *PackageGraph) link(records []Record) {
	for i, r := range records {
		v := g.versions[i]
		if v.shadowed {
			continue
		}
		for _, raw := range r.Requires {
			t, ok := g.resolveEdge(v, raw, requiresMessages)
			if !ok {
				continue
			}
			v.requires = append(v.requires, t)
			for _, m := range g.targets(t) {
				m.requiredBy = append(m.requiredBy, v.id)
			}
		}
		for _, raw := range r.UpdateFor {
			t, ok := g.resolveEdge(v, raw, updateForMessages)
			if !ok {
				continue
			}
			v.updateFor = append(v.updateFor, t)
			for _, m := range g.targets(t) {
				m.updates = append(m.updates, v.id)
			}
		}
	}
}

type edgeMessages struct {
	missingName    string
	missingVersion string
}

var (
	requiresMessages = edgeMessages{
		missingName:    "'%s' requires '%s', but there is not an item with that name in the repo.",
		missingVersion: "'%s' requires '%s-%s', but there is not an item with that version.",
	}
	updateForMessages = edgeMessages{
		missingName:    "'%s' is an update for '%s', but that item does not exist.",
		missingVersion: "'%s' is an update for '%s-%s', but there is not an item with that version in the repo.",
	}
)

func (g *PackageGraph) resolveEdge(owner *PackageVersion, raw string, msgs edgeMessages) (Target, bool) {
	ref := ParseReference(raw)
	grp, ok := g.groups[ref.Name]
	if !ok {
		if name, suffix, found := g.versionLike(raw); found {
			g.diags.Addf(KindMalformedReference,
				"'%s' references '%s', which looks like version '%s' of '%s', but versions must start with a digit.",
				owner, raw, suffix, name)
			return Target{}, false
		}
		g.diags.Addf(KindDanglingReference, msgs.missingName, owner, ref.Name)
		return Target{}, false
	}
	if !ref.HasVersion() {
		return Target{Name: grp.name, ID: NoID}, true
	}
	m, err := grp.Get(ref.Version)
	if err != nil {
		g.diags.Addf(KindDanglingReference, msgs.missingVersion, owner, ref.Name, ref.Version)
		return Target{}, false
	}
	return Target{Name: m.name, Version: m.Version(), ID: m.id}, true
}

// versionLike reports whether raw is "<known group><delim><suffix>" where
// the suffix was rejected as a version because it does not start with a
// digit.
func (g *PackageGraph) versionLike(raw string) (name, suffix string, ok bool) {
	for _, delim := range []string{"--", "-"} {
		i := lastSplit(raw, delim)
		if i <= 0 {
			continue
		}
		if _, known := g.groups[raw[:i]]; known {
			return raw[:i], raw[i+len(delim):], true
		}
	}
	return "", "", false
}

// targets expands an edge target into the versions that receive the
// reverse edge: the exact version, or every current member of the group.
func (g *PackageGraph) targets(t Target) []*PackageVersion {
	if !t.IsGroup() {
		return []*PackageVersion{g.versions[t.ID]}
	}
	return g.groups[t.Name].versions
}

// Diagnostics returns the graph's diagnostics accumulator. It holds both
// construction findings and findings from every query run so far.
func (g *PackageGraph) Diagnostics() *Diagnostics { return g.diags }

// Group returns the group called name.
func (g *PackageGraph) Group(name string) (*PackageGroup, bool) {
	grp, ok := g.groups[name]
	return grp, ok
}

// Has reports whether a group called name exists.
func (g *PackageGraph) Has(name string) bool {
	_, ok := g.groups[name]
	return ok
}

// Groups returns every group sorted by name.
func (g *PackageGraph) Groups() []*PackageGroup {
	out := make([]*PackageGroup, 0, len(g.groups))
	for _, name := range slices.Sorted(maps.Keys(g.groups)) {
		out = append(out, g.groups[name])
	}
	return out
}

// Version returns the version with the given ID.
func (g *PackageGraph) Version(id ID) (*PackageVersion, bool) {
	if id < 0 || int(id) >= len(g.versions) {
		return nil, false
	}
	return g.versions[id], true
}

// Lookup resolves a name or name-version reference to the matching versions,
// newest first.
func (g *PackageGraph) Lookup(ref string) []*PackageVersion {
	r := ParseReference(ref)
	grp, ok := g.groups[r.Name]
	if !ok {
		if grp, ok = g.groups[ref]; !ok {
			return nil
		}
		r = Reference{Name: ref}
	}
	if !r.HasVersion() {
		return grp.Descending()
	}
	v, err := grp.Get(r.Version)
	if err != nil {
		return nil
	}
	return []*PackageVersion{v}
}

// Versions returns every version in ID order, including shadowed ones.
func (g *PackageGraph) Versions() []*PackageVersion { return slices.Clone(g.versions) }

// VersionsOf maps IDs to versions, skipping unknown IDs.
func (g *PackageGraph) VersionsOf(ids []ID) []*PackageVersion {
	out := make([]*PackageVersion, 0, len(ids))
	for _, id := range ids {
		if v, ok := g.Version(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// Universe returns the set of every version in the graph.
func (g *PackageGraph) Universe() Set {
	s := make(Set, len(g.versions))
	for _, v := range g.versions {
		s.Add(v)
	}
	return s
}

// GroupCount returns the number of groups.
func (g *PackageGraph) GroupCount() int { return len(g.groups) }

// VersionCount returns the number of versions, including shadowed ones.
func (g *PackageGraph) VersionCount() int { return len(g.versions) }

func (g *PackageGraph) mustBeBuilt() {
	if g == nil || !g.built {
		panic("repo: PackageGraph used before Build completed")
	}
}
