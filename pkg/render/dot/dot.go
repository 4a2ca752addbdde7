package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/repo"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options configures DOT generation.
type Options struct {
	// Highlight fills these versions, typically a used-set.
	Highlight repo.Set
	// Detailed adds the OS range and channels to each label.
	Detailed bool
}

// ToDOT converts a package graph to Graphviz DOT source. Groups appear in
// name order and versions newest first. Shadowed duplicates are omitted.
func ToDOT(g *repo.PackageGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph spruce {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=Helvetica];\n")
	buf.WriteString("  edge [fontname=Helvetica];\n\n")

	groupTargets := make(map[string]bool)
	var edges []string
	for _, grp := range g.Groups() {
		for _, v := range grp.Descending() {
			fmt.Fprintf(&buf, "  %q [%s];\n", versionID(v), strings.Join(versionAttrs(v, opts), ", "))
			for _, t := range v.Requires() {
				edges = append(edges, edge(v, t, ""))
				if t.IsGroup() {
					groupTargets[t.Name] = true
				}
			}
			for _, t := range v.UpdateFor() {
				edges = append(edges, edge(v, t, "style=dashed, label=\"updates\""))
				if t.IsGroup() {
					groupTargets[t.Name] = true
				}
			}
		}
	}

	for _, grp := range g.Groups() {
		if groupTargets[grp.Name()] {
			fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, style=filled, fillcolor=lightgrey];\n",
				groupID(grp.Name()), grp.Name())
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func versionID(v *repo.PackageVersion) string { return v.String() }

func groupID(name string) string { return "group:" + name }

func targetID(t repo.Target) string {
	if t.IsGroup() {
		return groupID(t.Name)
	}
	return t.String()
}

func edge(from *repo.PackageVersion, to repo.Target, attrs string) string {
	if attrs == "" {
		return fmt.Sprintf("  %q -> %q;\n", versionID(from), targetID(to))
	}
	return fmt.Sprintf("  %q -> %q [%s];\n", versionID(from), targetID(to), attrs)
}

func versionAttrs(v *repo.PackageVersion, opts Options) []string {
	label := v.Name() + "\n" + v.Version()
	if opts.Detailed {
		label += "\nos: " + v.OSRange().String()
		if ch := v.Channels(); len(ch) > 0 {
			label += "\n" + strings.Join(ch, ", ")
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if opts.Highlight.Contains(v) {
		attrs = append(attrs, "fillcolor=palegreen")
	}
	return attrs
}

// Render converts DOT source to the given format. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, src, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return RenderSVG(ctx, src)
	case FormatPNG:
		return RenderPNG(ctx, src)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q (must be one of: dot, svg, png)", format)
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, src string) ([]byte, error) {
	return render(ctx, src, graphviz.SVG)
}

// RenderPNG renders DOT source to PNG using Graphviz.
func RenderPNG(ctx context.Context, src string) ([]byte, error) {
	return render(ctx, src, graphviz.PNG)
}

func render(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
