package report

import (
	"slices"

	"github.com/matzehuels/spruce/pkg/errors"
)

// Name identifies a report.
type Name string

const (
	NameOutOfDate          Name = "out-of-date"
	NameUnused             Name = "unused"
	NameUnattendedTesting  Name = "unattended-testing"
	NameUnattendedProd     Name = "unattended-production"
	NameForceTesting       Name = "force-install-testing"
	NameForceProd          Name = "force-install-production"
	NameCategories         Name = "categories"
	NameMissingInstallers  Name = "missing-installers"
	NameOrphanedInstallers Name = "orphaned-installers"
	NameLoadErrors         Name = "errors"
	NameRemovalPlan        Name = "removal-plan"

	// NameConditions and NameAll select groups of reports in [Run].
	NameConditions Name = "conditions"
	NameAll        Name = "all"
)

var titles = map[Name]string{
	NameOutOfDate:          "Out of Date Items",
	NameUnused:             "Items Not Used by any Manifest",
	NameUnattendedTesting:  "Unattended Installs in Testing Catalogs",
	NameUnattendedProd:     "Items Lacking Unattended in Production Catalog",
	NameForceTesting:       "force_install_after_date not set for Testing Items",
	NameForceProd:          "force_install_after_date set for Production Items",
	NameCategories:         "Categories",
	NameMissingInstallers:  "Pkginfos with Missing Installer Items",
	NameOrphanedInstallers: "Pkgs with no Referring Pkginfo",
	NameLoadErrors:         "Pkgsinfo with Errors",
	NameRemovalPlan:        "Items to be Removed",
	NameConditions:         "Condition Reports",
	NameAll:                "All Reports",
}

var groups = map[Name][]Name{
	NameConditions: {NameUnattendedTesting, NameUnattendedProd, NameForceTesting, NameForceProd},
	NameAll: {
		NameLoadErrors, NameMissingInstallers, NameOrphanedInstallers,
		NameOutOfDate, NameUnused,
		NameUnattendedTesting, NameUnattendedProd, NameForceTesting, NameForceProd,
		NameCategories,
	},
}

// Title returns the human-readable heading.
func (n Name) Title() string {
	if t, ok := titles[n]; ok {
		return t
	}
	return string(n)
}

// Expand returns the single reports n stands for.
func (n Name) Expand() []Name {
	if g, ok := groups[n]; ok {
		return slices.Clone(g)
	}
	return []Name{n}
}

// Names returns every name accepted by [Run], sorted.
func Names() []Name {
	var out []Name
	for n := range titles {
		if n != NameRemovalPlan {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// ParseName validates s as a report name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if _, ok := titles[n]; !ok || n == NameRemovalPlan {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown report %q (valid: %v)", s, Names())
	}
	return n, nil
}
