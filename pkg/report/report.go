package report

import (
	"cmp"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/spruce/pkg/repo"
	"github.com/matzehuels/spruce/pkg/version"
)

// Item is one row of a report.
type Item struct {
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Path     string `json:"path,omitempty"`
	Artifact string `json:"artifact,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// HumanSize formats the item's artifact size, or "" when unknown.
func (i Item) HumanSize() string {
	if i.Size <= 0 {
		return ""
	}
	return HumanSize(i.Size)
}

// Report is a titled list of items.
type Report struct {
	Name      Name   `json:"name"`
	Title     string `json:"title"`
	Items     []Item `json:"items"`
	TotalSize int64  `json:"total_size,omitempty"`
}

// Len returns the number of items.
func (r Report) Len() int { return len(r.Items) }

// Empty reports whether the report has no items.
func (r Report) Empty() bool { return len(r.Items) == 0 }

// HumanTotal formats TotalSize.
func (r Report) HumanTotal() string { return HumanSize(r.TotalSize) }

func newReport(name Name, items []Item) Report {
	sortItems(items)
	if items == nil {
		items = []Item{}
	}
	var total int64
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Artifact != "" {
			if seen[it.Artifact] {
				continue
			}
			seen[it.Artifact] = true
		}
		total += it.Size
	}
	return Report{Name: name, Title: name.Title(), Items: items, TotalSize: total}
}

func sortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := version.Compare(b.Version, a.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

func versionItem(v *repo.PackageVersion) Item {
	return Item{
		Name:     v.Name(),
		Version:  v.Version(),
		Path:     v.MetadataPath(),
		Artifact: v.ArtifactPath(),
		Size:     v.ArtifactSize(),
	}
}

func setItems(s repo.Set) []Item {
	items := make([]Item, 0, s.Len())
	for _, v := range s.Sorted() {
		items = append(items, versionItem(v))
	}
	return items
}

// HumanSize formats a byte count with SI units (1 kB = 1000 bytes).
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// DiskUsage sums the artifact sizes of s. An artifact shared by several
// versions is counted once.
func DiskUsage(s repo.Set) int64 {
	var total int64
	seen := make(map[string]bool)
	for _, v := range s {
		if !v.HasArtifact() || seen[v.ArtifactPath()] {
			continue
		}
		seen[v.ArtifactPath()] = true
		total += v.ArtifactSize()
	}
	return total
}
