package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/repo"
)

func testGraph() *repo.PackageGraph {
	return repo.Build([]repo.Record{
		{Name: "Foo", Version: "1.0", Channels: []string{"production"}},
		{Name: "Foo", Version: "2.0", Channels: []string{"testing"}},
		{Name: "Bar", Version: "1.0", Requires: []string{"Foo"}},
		{Name: "Patch", Version: "1", UpdateFor: []string{"Foo-2.0"}},
	}, repo.BuildOptions{})
}

func TestToDOT(t *testing.T) {
	g := testGraph()
	used := g.UsedItems([]string{"Bar"}, 1, nil)
	src := ToDOT(g, Options{Highlight: used})

	for _, want := range []string{
		"digraph spruce {",
		`"Foo-2.0" [label="Foo\n2.0", fillcolor=palegreen];`,
		`"Foo-1.0" [label="Foo\n1.0"];`,
		`"group:Foo" [label="Foo", shape=folder`,
		`"Bar-1.0" -> "group:Foo";`,
		`"Patch-1" -> "Foo-2.0" [style=dashed, label="updates"];`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q\n%s", want, src)
		}
	}
	if ToDOT(g, Options{Highlight: used}) != src {
		t.Error("ToDOT is not deterministic")
	}
}

func TestToDOTDetailed(t *testing.T) {
	src := ToDOT(testGraph(), Options{Detailed: true})
	if !strings.Contains(src, `os: 10.4.0 - 10.12.99\ntesting`) {
		t.Errorf("detailed label missing OS range and channels:\n%s", src)
	}
	if strings.Contains(src, "palegreen") {
		t.Error("nothing should be highlighted without a Highlight set")
	}
}

func TestRenderFormats(t *testing.T) {
	ctx := context.Background()
	src := ToDOT(testGraph(), Options{})

	out, err := Render(ctx, src, FormatDOT)
	if err != nil || string(out) != src {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
	if _, err := Render(ctx, src, "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) err = %v, want INVALID_FORMAT", err)
	}

	svg, err := Render(ctx, src, FormatSVG)
	if err != nil {
		t.Fatalf("Render(svg): %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("SVG output missing <svg> element")
	}
}
