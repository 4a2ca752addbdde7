package report

import (
	"github.com/matzehuels/spruce/pkg/errors"
)

// Run produces the reports selected by name, expanding group names such
// as [NameAll]. Metadata reports need in.Repo; usage reports need
// in.Graph.
func Run(in Input, name Name) ([]Report, error) {
	if _, ok := titles[name]; !ok || name == NameRemovalPlan {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown report %q", name)
	}
	var out []Report
	for _, n := range name.Expand() {
		r, err := runOne(in, n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func runOne(in Input, n Name) (Report, error) {
	switch n {
	case NameOutOfDate, NameUnused:
		if in.Graph == nil {
			return Report{}, errors.New(errors.ErrCodeInvalidInput, "report %s needs a package graph", n)
		}
		if n == NameOutOfDate {
			return OutOfDate(in), nil
		}
		return Unused(in), nil
	}

	if in.Repo == nil {
		return Report{}, errors.New(errors.ErrCodeInvalidInput, "report %s needs repository metadata", n)
	}
	switch n {
	case NameCategories:
		return CategoriesReport(in.Repo), nil
	case NameMissingInstallers:
		return MissingInstallers(in.Repo), nil
	case NameOrphanedInstallers:
		return OrphanedInstallers(in.Repo), nil
	case NameLoadErrors:
		return LoadErrors(in.Repo), nil
	default:
		return Condition(n, in.Repo), nil
	}
}
