package repo

import "strings"

// Reference is a parsed requirement, update target or entry point: a package
// name and an optional exact version.
type Reference struct {
	Name    string
	Version string // empty means any version satisfies
}

// ParseReference splits s into a name and an optional version.
//
// The split happens at the last "--" found scanning left to right without
// overlap, else the rightmost "-", and only when the suffix starts with a
// digit. Otherwise the whole string is a bare name:
//
//	"AdobePhotoshopCS3--11.2.1" → {AdobePhotoshopCS3 11.2.1}
//	"TextWrangler-2.3b1"        → {TextWrangler 2.3b1}
//	"Foo---1.0"                 → {Foo-- 1.0}
//	"no-version-here"           → {no-version-here ""}
func ParseReference(s string) Reference {
	for _, delim := range []string{"--", "-"} {
		if i := lastSplit(s, delim); i >= 0 {
			vers := s[i+len(delim):]
			if vers != "" && vers[0] >= '0' && vers[0] <= '9' {
				return Reference{Name: s[:i], Version: vers}
			}
		}
	}
	return Reference{Name: s}
}

// lastSplit returns the index of the last occurrence of delim in s when
// occurrences are matched left to right without overlapping, or -1. In
// "a---b" the last "--" starts at index 1, not 2.
func lastSplit(s, delim string) int {
	last := -1
	for off := 0; ; {
		j := strings.Index(s[off:], delim)
		if j < 0 {
			return last
		}
		last = off + j
		off = last + len(delim)
	}
}

// HasVersion reports whether the reference pins an exact version.
func (r Reference) HasVersion() bool { return r.Version != "" }

// String formats the reference as "name" or "name-version".
func (r Reference) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "-" + r.Version
}
