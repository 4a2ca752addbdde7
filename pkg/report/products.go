package report

import (
	"strings"

	"github.com/matzehuels/spruce/pkg/repo"
)

// Product is a package name with its versions, newest first.
type Product struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Products lists every package name in g, sorted. A non-empty filter keeps
// names containing it, ignoring case.
func Products(g *repo.PackageGraph, filter string) []Product {
	filter = strings.ToUpper(filter)
	out := []Product{}
	for _, grp := range g.Groups() {
		if filter != "" && !strings.Contains(strings.ToUpper(grp.Name()), filter) {
			continue
		}
		p := Product{Name: grp.Name()}
		for v := range grp.All() {
			p.Versions = append(p.Versions, v.Version())
		}
		out = append(out, p)
	}
	return out
}
