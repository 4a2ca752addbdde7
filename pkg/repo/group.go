package repo

import (
	"iter"
	"slices"

	"github.com/matzehuels/spruce/pkg/errors"
)

// ErrVersionNotFound is the cause wrapped by [PackageGroup.Get] when the
// requested version is not a member of the group.
var ErrVersionNotFound = errors.New(errors.ErrCodeVersionNotFound, "version not found")

// PackageGroup holds every version of one package, stored in ascending
// version order.
type PackageGroup struct {
	name     string
	versions []*PackageVersion
}

// Name returns the package name shared by all members.
func (g *PackageGroup) Name() string { return g.name }

// Len returns the number of versions in the group.
func (g *PackageGroup) Len() int { return len(g.versions) }

// Get returns the member whose version string equals v. The returned error
// wraps [ErrVersionNotFound] when there is none.
func (g *PackageGroup) Get(v string) (*PackageVersion, error) {
	for _, pv := range g.versions {
		if pv.Version() == v {
			return pv, nil
		}
	}
	return nil, errors.Wrap(errors.ErrCodeVersionNotFound, ErrVersionNotFound, "%s has no version %q", g.name, v)
}

// Has reports whether the group contains version v.
func (g *PackageGroup) Has(v string) bool {
	_, err := g.Get(v)
	return err == nil
}

// Newest returns up to n versions, newest first. n <= 0 returns all.
func (g *PackageGroup) Newest(n int) []*PackageVersion {
	out := g.Descending()
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Ascending returns the members oldest first.
func (g *PackageGroup) Ascending() []*PackageVersion { return slices.Clone(g.versions) }

// Descending returns the members newest first.
func (g *PackageGroup) Descending() []*PackageVersion {
	out := slices.Clone(g.versions)
	slices.Reverse(out)
	return out
}

// All iterates the members newest first.
func (g *PackageGroup) All() iter.Seq[*PackageVersion] {
	return func(yield func(*PackageVersion) bool) {
		for i := len(g.versions) - 1; i >= 0; i-- {
			if !yield(g.versions[i]) {
				return
			}
		}
	}
}

func (g *PackageGroup) insert(v *PackageVersion) {
	i, _ := slices.BinarySearchFunc(g.versions, v, compareVersions)
	g.versions = slices.Insert(g.versions, i, v)
}
