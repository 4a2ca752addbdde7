// Package report turns a package graph and its repository into the
// maintenance reports an administrator acts on.
//
// Reports driven by usage reachability:
//
//   - [OutOfDate]: versions still reachable from the manifests but outside
//     the keep window. These are the versions a cleanup would remove.
//   - [Unused]: versions not reachable from any manifest at all.
//   - [BuildPlan]: a removal plan, either automatic (by keep level) or by
//     name and category, with the names that would vanish from manifests
//     and warnings for artifacts still referenced elsewhere.
//
// Reports driven by metadata alone:
//
//   - [Conditions]: unattended and force-install policy checks, split by
//     testing and production channels.
//   - [Categories]: category histogram.
//   - [MissingInstallers], [OrphanedInstallers], [LoadErrors]: repository
//     hygiene.
//
// Every [Report] lists its items by name ascending, newest version first.
// [Run] dispatches by report [Name] for the CLI and HTTP API.
package report
