package repo

import (
	"slices"
	"strings"

	"github.com/matzehuels/spruce/pkg/version"
)

// ID addresses a PackageVersion inside its PackageGraph. IDs are dense,
// start at zero and are stable for the lifetime of the graph.
type ID int

// NoID marks a Target that points at a whole group rather than one version.
const NoID ID = -1

// Target is the destination of a requires or update_for edge. It points
// either at one exact version (ID >= 0) or at a whole group, meaning any
// version of that package satisfies the edge.
type Target struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	ID      ID     `json:"id"`
}

// IsGroup reports whether the target is a whole package group.
func (t Target) IsGroup() bool { return t.ID < 0 }

// Reference returns the target as a name or name-version reference.
func (t Target) Reference() Reference {
	return Reference{Name: t.Name, Version: t.Version}
}

// String formats the target as "name" or "name-version".
func (t Target) String() string { return t.Reference().String() }

// PackageVersion is one release of a package. Its identity and attributes
// are fixed when the graph is built; its edge lists are filled once during
// linking and never change afterwards.
type PackageVersion struct {
	id           ID
	name         string
	version      version.Version
	os           version.Range
	channels     []string
	size         int64
	metadataPath string
	artifactPath string
	shadowed     bool

	requires   []Target
	requiredBy []ID
	updateFor  []Target
	updates    []ID
}

// ID returns the version's stable identifier within its graph.
func (v *PackageVersion) ID() ID { return v.id }

// Name returns the package name.
func (v *PackageVersion) Name() string { return v.name }

// Version returns the raw version string.
func (v *PackageVersion) Version() string { return v.version.String() }

// ParsedVersion returns the version in comparable form.
func (v *PackageVersion) ParsedVersion() version.Version { return v.version }

// OSRange returns the inclusive range of OS releases this version supports.
func (v *PackageVersion) OSRange() version.Range { return v.os }

// Channels returns the channels (catalogs) this version is published to.
func (v *PackageVersion) Channels() []string { return slices.Clone(v.channels) }

// ArtifactSize returns the installable payload size in bytes, or 0.
func (v *PackageVersion) ArtifactSize() int64 { return v.size }

// MetadataPath returns the opaque handle of the source metadata record.
func (v *PackageVersion) MetadataPath() string { return v.metadataPath }

// ArtifactPath returns the installable payload handle, or "" for
// metadata-only entries such as OS update stubs.
func (v *PackageVersion) ArtifactPath() string { return v.artifactPath }

// HasArtifact reports whether the version ships an installable payload.
func (v *PackageVersion) HasArtifact() bool { return v.artifactPath != "" }

// Shadowed reports whether another record with the same name and version
// was loaded first. Shadowed versions are not members of their group, carry
// no edges and are never reachable.
func (v *PackageVersion) Shadowed() bool { return v.shadowed }

// Requires returns the outgoing requires edges.
func (v *PackageVersion) Requires() []Target { return slices.Clone(v.requires) }

// RequiredBy returns the IDs of versions whose requires edges reach v,
// either directly or through v's group.
func (v *PackageVersion) RequiredBy() []ID { return slices.Clone(v.requiredBy) }

// UpdateFor returns the outgoing update_for edges.
func (v *PackageVersion) UpdateFor() []Target { return slices.Clone(v.updateFor) }

// Updates returns the IDs of versions that declare themselves an update for
// v, either directly or through v's group.
func (v *PackageVersion) Updates() []ID { return slices.Clone(v.updates) }

// Reference returns the exact name-version reference of v.
func (v *PackageVersion) Reference() Reference {
	return Reference{Name: v.name, Version: v.version.String()}
}

// String formats v as "name-version".
func (v *PackageVersion) String() string { return v.Reference().String() }

// InChannels reports whether v is published to at least one of channels.
// An empty filter admits every version.
func (v *PackageVersion) InChannels(channels []string) bool {
	if len(channels) == 0 {
		return true
	}
	for _, c := range v.channels {
		if slices.Contains(channels, c) {
			return true
		}
	}
	return false
}

// compareVersions orders by name ascending, then version ascending. Raw
// strings break ties between loosely-equal versions such as "1.01" and "1.1".
func compareVersions(a, b *PackageVersion) int {
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	return strings.Compare(a.version.String(), b.version.String())
}

// SortVersions sorts vs by name ascending and newest version first, the
// order reports list versions in.
func SortVersions(vs []*PackageVersion) {
	slices.SortFunc(vs, func(a, b *PackageVersion) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return -compareVersions(a, b)
	})
}
