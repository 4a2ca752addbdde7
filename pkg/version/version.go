package version

import (
	"strings"
)

// Version is a parsed loose version. The zero value is the empty version,
// which sorts before every non-empty version.
type Version struct {
	raw   string
	parts []part
}

// part is one component of a version. Numeric parts store their digits
// with leading zeros stripped so arbitrarily long numbers compare without
// overflow.
type part struct {
	s     string
	isNum bool
}

// Parse tokenizes s into a Version. Parse never fails: any string has a
// loose interpretation.
func Parse(s string) Version {
	v := Version{raw: s}
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '.':
			i++
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			v.parts = append(v.parts, part{s: trimZeros(s[i:j]), isNum: true})
			i = j
		case isLower(c):
			j := i
			for j < len(s) && isLower(s[j]) {
				j++
			}
			v.parts = append(v.parts, part{s: s[i:j]})
			i = j
		default:
			j := i
			for j < len(s) && s[j] != '.' && !isDigit(s[j]) && !isLower(s[j]) {
				j++
			}
			v.parts = append(v.parts, part{s: s[i:j]})
			i = j
		}
	}
	return v
}

// String returns the original, unparsed version string.
func (v Version) String() string { return v.raw }

// IsZero reports whether v was parsed from an empty string.
func (v Version) IsZero() bool { return len(v.parts) == 0 }

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after o. Versions that differ only in leading zeros or dot placement
// (e.g. "1.01" and "1.1") compare equal.
func (v Version) Compare(o Version) int {
	n := min(len(v.parts), len(o.parts))
	for i := 0; i < n; i++ {
		if c := comparePart(v.parts[i], o.parts[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(v.parts) < len(o.parts):
		return -1
	case len(v.parts) > len(o.parts):
		return 1
	}
	return 0
}

// Less reports whether v sorts strictly before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o compare equal.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Compare parses a and b and compares them. See [Version.Compare].
func Compare(a, b string) int { return Parse(a).Compare(Parse(b)) }

// Less parses a and b and reports whether a sorts before b.
func Less(a, b string) bool { return Compare(a, b) < 0 }

func comparePart(a, b part) int {
	switch {
	case a.isNum && b.isNum:
		if len(a.s) != len(b.s) {
			if len(a.s) < len(b.s) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.s, b.s)
	case a.isNum:
		return -1
	case b.isNum:
		return 1
	}
	return strings.Compare(a.s, b.s)
}

func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
