package report

import (
	"github.com/matzehuels/spruce/pkg/pkginfo"
	"github.com/matzehuels/spruce/pkg/repo"
)

// Input carries everything a report may need. Repo may be nil for the
// graph-only reports.
type Input struct {
	Graph       *repo.PackageGraph
	Repo        *pkginfo.Repository
	EntryPoints []string
	Keep        int
	Channels    []string
	Matrix      repo.OSMatrix
	Workers     int
}

func (in Input) query(keep int, channels []string) repo.Query {
	return repo.Query{
		EntryPoints: in.EntryPoints,
		Keep:        keep,
		Channels:    channels,
		Matrix:      in.Matrix,
		Workers:     in.Workers,
	}
}

// Used returns the used-set for the input's keep and channels.
func Used(in Input) repo.Set {
	return in.Graph.Resolve(in.query(in.Keep, in.Channels))
}

// OutOfDateSet returns the versions reachable with no keep cap but not
// within the keep window, both restricted to in.Channels.
func OutOfDateSet(in Input) repo.Set {
	if in.Keep <= 0 {
		return repo.NewSet()
	}
	all := in.Graph.Resolve(in.query(repo.Unbounded, in.Channels))
	kept := in.Graph.Resolve(in.query(in.Keep, in.Channels))
	return all.Difference(kept)
}

// OutOfDate lists [OutOfDateSet].
func OutOfDate(in Input) Report {
	return newReport(NameOutOfDate, setItems(OutOfDateSet(in)))
}

// UnusedSet returns every version not reachable from the entry points,
// ignoring keep and channels.
func UnusedSet(in Input) repo.Set {
	used := in.Graph.Resolve(in.query(repo.Unbounded, nil))
	return in.Graph.Universe().Difference(used)
}

// Unused lists [UnusedSet].
func Unused(in Input) Report {
	return newReport(NameUnused, setItems(UnusedSet(in)))
}
