package repo

import (
	"maps"
	"slices"
)

// Set is an unordered set of package versions keyed by ID. Inserting the
// same version twice is a no-op.
type Set map[ID]*PackageVersion

// NewSet returns a set holding vs.
func NewSet(vs ...*PackageVersion) Set {
	s := make(Set, len(vs))
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

// Add inserts v.
func (s Set) Add(v *PackageVersion) { s[v.id] = v }

// Contains reports whether v is in the set.
func (s Set) Contains(v *PackageVersion) bool {
	_, ok := s[v.id]
	return ok
}

// Len returns the number of versions in the set.
func (s Set) Len() int { return len(s) }

// Merge adds every member of o to s.
func (s Set) Merge(o Set) {
	maps.Copy(s, o)
}

// Union returns a new set with the members of s and o.
func (s Set) Union(o Set) Set {
	out := maps.Clone(s)
	if out == nil {
		out = make(Set, len(o))
	}
	out.Merge(o)
	return out
}

// Difference returns the members of s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for id, v := range s {
		if _, ok := o[id]; !ok {
			out[id] = v
		}
	}
	return out
}

// Intersect returns the members present in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for id, v := range s {
		if _, ok := o[id]; ok {
			out[id] = v
		}
	}
	return out
}

// SubsetOf reports whether every member of s is in o.
func (s Set) SubsetOf(o Set) bool {
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether s and o hold exactly the same versions.
func (s Set) Equal(o Set) bool { return len(s) == len(o) && s.SubsetOf(o) }

// Sorted returns the members by name ascending, newest version first.
func (s Set) Sorted() []*PackageVersion {
	out := slices.Collect(maps.Values(s))
	SortVersions(out)
	return out
}

// Strings returns the sorted members formatted as "name-version".
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, v := range sorted {
		out[i] = v.String()
	}
	return out
}
