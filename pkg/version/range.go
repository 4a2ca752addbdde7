package version

// Range is an inclusive [Min, Max] interval of versions. It is used to
// express the operating system releases a package version supports.
type Range struct {
	Min Version
	Max Version
}

// NewRange parses min and max into a Range. Empty bounds fall back to
// defMin and defMax respectively.
func NewRange(min, max, defMin, defMax string) Range {
	if min == "" {
		min = defMin
	}
	if max == "" {
		max = defMax
	}
	return Range{Min: Parse(min), Max: Parse(max)}
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v Version) bool {
	return r.Min.Compare(v) <= 0 && v.Compare(r.Max) <= 0
}

// String formats the range as "min - max".
func (r Range) String() string {
	return r.Min.String() + " - " + r.Max.String()
}
