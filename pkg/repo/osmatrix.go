package repo

import (
	"fmt"

	"github.com/matzehuels/spruce/pkg/version"
)

// OSMatrix is the list of OS releases the resolver simulates. It encodes the
// supported platform policy and is independent of the graph itself.
type OSMatrix struct {
	releases []version.Version
}

// DefaultOSMatrix returns the sweep 10.8.0 through 10.12.9: majors 8 to 12,
// minors 0 to 9.
func DefaultOSMatrix() OSMatrix {
	return NewOSMatrix("10", 8, 12, 0, 9)
}

// NewOSMatrix returns every "<prefix>.<major>.<minor>" release for major in
// [majorFrom, majorTo] and minor in [minorFrom, minorTo], in ascending order.
func NewOSMatrix(prefix string, majorFrom, majorTo, minorFrom, minorTo int) OSMatrix {
	var m OSMatrix
	for major := majorFrom; major <= majorTo; major++ {
		for minor := minorFrom; minor <= minorTo; minor++ {
			m.releases = append(m.releases, version.Parse(fmt.Sprintf("%s.%d.%d", prefix, major, minor)))
		}
	}
	return m
}

// OSMatrixOf returns a matrix of explicit releases, in the given order.
func OSMatrixOf(releases ...string) OSMatrix {
	var m OSMatrix
	for _, r := range releases {
		m.releases = append(m.releases, version.Parse(r))
	}
	return m
}

// Releases returns the simulated releases.
func (m OSMatrix) Releases() []version.Version {
	return append([]version.Version(nil), m.releases...)
}

// Len returns the number of simulated releases.
func (m OSMatrix) Len() int { return len(m.releases) }

// IsZero reports whether the matrix has no releases.
func (m OSMatrix) IsZero() bool { return len(m.releases) == 0 }
