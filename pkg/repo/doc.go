// Package repo models a catalog of versioned software packages and answers
// which versions are still in use.
//
// # Overview
//
// A repository holds many releases of many packages. Deployment manifests
// name the packages a fleet should have, either by bare name ("Firefox") or
// by exact release ("Firefox-115.0"). Releases depend on each other through
// requires edges and patch each other through update_for edges. This package
// turns a flat list of metadata [Record]s into a [PackageGraph] and computes
// the closure of versions that must be kept for a given retention policy.
//
// # Data Model
//
//   - [PackageVersion]: one release, with its OS compatibility window,
//     publication channels and edge lists.
//   - [PackageGroup]: every release sharing a name, ordered by loose version
//     comparison (see package version). Iteration is newest first.
//   - [PackageGraph]: all groups plus a [Diagnostics] accumulator.
//
// Versions live in an arena inside the graph and are addressed by [ID].
// Reverse edges (RequiredBy, Updates) store IDs, so the graph has no owning
// cycles and traversal state is tracked by ID.
//
// # Construction
//
// [Build] runs in two phases. The load phase creates every version from its
// own record. The link phase then resolves every requires and update_for
// reference against the complete set, so forward references across package
// names are never a problem. A reference with a version links to that exact
// version; a bare name links to the whole group and every member receives
// the reverse edge. Unresolvable references are recorded as diagnostics and
// skipped; construction never fails.
//
// Reference strings are split with [ParseReference]:
//
//	"AdobePhotoshopCS3--11.2.1" → AdobePhotoshopCS3, 11.2.1
//	"TextWrangler-2.3b1"        → TextWrangler, 2.3b1
//	"no-version-here"           → no-version-here, (any)
//
// # Reachability
//
// [PackageGraph.Resolve] sweeps an [OSMatrix] of simulated OS releases. At
// each release it walks each entry point's eligible versions newest first,
// keeping at most Query.Keep of them, and follows requires and updates edges
// from every kept version. The union across releases is the used-set.
//
// Typical consumers compare runs:
//
//	current := g.UsedItems(entries, 1, []string{"production"})
//	ever := g.UsedItems(entries, repo.Unbounded, []string{"production"})
//	outOfDate := ever.Difference(current)
//	unused := g.Universe().Difference(g.UsedItems(entries, repo.Unbounded, nil))
//
// # Diagnostics
//
// Dangling references, unreachable entry points, malformed references and
// duplicate versions are collected in [PackageGraph.Diagnostics]. Nothing in
// this package returns an error for bad repository data; the only fatal
// condition is using a graph that did not come from [Build], which panics.
//
// # Concurrency
//
// A built graph is read-only apart from its diagnostics, which are
// synchronized. Resolve sweeps OS releases on up to Query.Workers goroutines,
// each with its own traversal state, and merges the results; the merged set
// is identical for any worker count.
package repo
