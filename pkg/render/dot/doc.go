// Package dot exports a package graph as a Graphviz digraph.
//
// Every package version becomes a box node. A requires edge is drawn
// solid and an update_for edge dashed. Edges that name a package without
// a version point at a folder-shaped group node, since any version of that
// package satisfies them.
//
//	src := dot.ToDOT(g, dot.Options{Highlight: used})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz],
// so no external binary is needed.
package dot
