// Package pkg holds the libraries behind spruce, a tool that finds stale
// and unused packages in a Munki software repository.
//
// # Overview
//
// A Munki repository keeps one metadata file (pkginfo) per package version
// and a set of deployment manifests naming what clients should install.
// Spruce builds a graph of every version, follows the requires and
// update_for relations from the manifest entry points across a matrix of
// simulated OS releases, and reports what is no longer reachable.
//
// # Architecture
//
//	pkgsinfo/ + manifests/
//	         ↓
//	    [pkginfo] package (scan and decode plist, YAML or JSON metadata)
//	         ↓
//	    [repo] package (package graph, reference parsing, resolver)
//	         ↓
//	    [report] package (out-of-date, unused, metadata reports, removal plans)
//	         ↓
//	    terminal tables, JSON, DOT/SVG/PNG, HTTP API
//
// [pipeline] strings the stages together and caches results keyed on a
// fingerprint of the repository. [cache] and [store] provide the cache and
// run history backends, [server] the HTTP API and [render/dot] the Graphviz
// export.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Run(ctx, pipeline.Options{
//	    RepoPath: "/Volumes/munki_repo",
//	    Reports:  []report.Name{report.NameOutOfDate},
//	    Keep:     1,
//	    Channels: []string{"production"},
//	})
//
// [version] implements the loose version ordering used throughout, and
// [errors] the coded errors every layer returns.
package pkg
