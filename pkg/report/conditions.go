package report

import (
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/spruce/pkg/pkginfo"
)

type condition func(*pkginfo.Record) bool

var conditions = map[Name][]condition{
	NameUnattendedTesting: {
		(*pkginfo.Record).InTesting,
		func(r *pkginfo.Record) bool { return r.UnattendedInstall },
	},
	NameUnattendedProd: {
		(*pkginfo.Record).InProduction,
		func(r *pkginfo.Record) bool { return !r.UnattendedInstall },
	},
	NameForceTesting: {
		(*pkginfo.Record).InTesting,
		func(r *pkginfo.Record) bool { return r.ForceInstallAfterDate == nil },
	},
	NameForceProd: {
		(*pkginfo.Record).InProduction,
		func(r *pkginfo.Record) bool { return r.ForceInstallAfterDate != nil },
	},
}

// Condition runs one of the metadata policy reports.
func Condition(name Name, r *pkginfo.Repository) Report {
	conds := conditions[name]
	var items []Item
	for _, path := range r.PkginfoPaths() {
		rec := r.Pkgsinfo[path]
		if matchesAll(rec, conds) {
			items = append(items, Item{Name: rec.Name, Version: rec.Version, Path: path})
		}
	}
	return newReport(name, items)
}

func matchesAll(rec *pkginfo.Record, conds []condition) bool {
	for _, c := range conds {
		if !c(rec) {
			return false
		}
	}
	return len(conds) > 0
}

// Conditions runs every metadata policy report.
func Conditions(r *pkginfo.Repository) []Report {
	var out []Report
	for _, n := range NameConditions.Expand() {
		out = append(out, Condition(n, r))
	}
	return out
}

// CategoryCount is one row of the category histogram.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Categories counts metadata files per category, sorted by category.
// Uncategorised files count towards [pkginfo.NoCategory].
func Categories(r *pkginfo.Repository) []CategoryCount {
	counts := make(map[string]int)
	for _, rec := range r.Pkgsinfo {
		counts[rec.CategoryName()]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, c := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

// CategoriesReport renders [Categories] as a report, one item per category
// with the count as detail.
func CategoriesReport(r *pkginfo.Repository) Report {
	var items []Item
	for _, c := range Categories(r) {
		items = append(items, Item{Name: c.Category, Detail: strconv.Itoa(c.Count)})
	}
	return newReport(NameCategories, items)
}
