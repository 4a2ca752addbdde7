package report

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/spruce/pkg/pkginfo"
	"github.com/matzehuels/spruce/pkg/repo"
)

func names(r Report) []string {
	var out []string
	for _, it := range r.Items {
		if it.Version == "" {
			out = append(out, it.Name)
			continue
		}
		out = append(out, it.Name+"-"+it.Version)
	}
	return out
}

// fixture: Foo has three production versions and a testing one, Bar
// requires Foo, Patch updates Foo-2.0, and Orphan is in no manifest.
func fixture() Input {
	records := []repo.Record{
		{MetadataPath: "p/Foo-1.0", Name: "Foo", Version: "1.0", Channels: []string{"production"}, ArtifactPath: "Foo-1.0.dmg", ArtifactSize: 1000},
		{MetadataPath: "p/Foo-1.5", Name: "Foo", Version: "1.5", Channels: []string{"production"}, ArtifactPath: "Foo-1.5.dmg", ArtifactSize: 2000},
		{MetadataPath: "p/Foo-2.0", Name: "Foo", Version: "2.0", Channels: []string{"production"}, ArtifactPath: "Foo-2.0.dmg", ArtifactSize: 3000},
		{MetadataPath: "p/Foo-3.0b1", Name: "Foo", Version: "3.0b1", Channels: []string{"testing"}},
		{MetadataPath: "p/Bar-1.0", Name: "Bar", Version: "1.0", Requires: []string{"Foo"}, Channels: []string{"production"}},
		{MetadataPath: "p/Patch-1", Name: "Patch", Version: "1", UpdateFor: []string{"Foo-2.0"}},
		{MetadataPath: "p/Orphan-1", Name: "Orphan", Version: "1", ArtifactPath: "Foo-1.0.dmg", ArtifactSize: 1000},
	}
	return Input{
		Graph:       repo.Build(records, repo.BuildOptions{}),
		EntryPoints: []string{"Bar", "Foo"},
		Keep:        1,
		Channels:    []string{"production"},
	}
}

func TestOutOfDate(t *testing.T) {
	in := fixture()
	r := OutOfDate(in)
	if got, want := names(r), []string{"Foo-1.5", "Foo-1.0"}; !slices.Equal(got, want) {
		t.Errorf("OutOfDate = %v, want %v", got, want)
	}
	if r.TotalSize != 3000 {
		t.Errorf("TotalSize = %d, want 3000", r.TotalSize)
	}
	if r.Title == "" || r.Name != NameOutOfDate {
		t.Errorf("header = %q %q", r.Name, r.Title)
	}

	in.Keep = 2
	if got, want := names(OutOfDate(in)), []string{"Foo-1.0"}; !slices.Equal(got, want) {
		t.Errorf("keep=2 OutOfDate = %v, want %v", got, want)
	}

	in.Keep = repo.Unbounded
	if r := OutOfDate(in); !r.Empty() || r.Items == nil {
		t.Errorf("unbounded OutOfDate = %v, want empty non-nil", r.Items)
	}
}

func TestUnused(t *testing.T) {
	got := names(Unused(fixture()))
	if want := []string{"Orphan-1"}; !slices.Equal(got, want) {
		t.Errorf("Unused = %v, want %v", got, want)
	}
}

func TestBuildPlanAuto(t *testing.T) {
	in := fixture()
	plan, err := BuildPlan(in, PlanOptions{Level: 1})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if got, want := names(plan.Removals), []string{"Foo-1.5", "Foo-1.0"}; !slices.Equal(got, want) {
		t.Errorf("Removals = %v, want %v", got, want)
	}
	if len(plan.ManifestRemovals) != 0 {
		t.Errorf("ManifestRemovals = %v, want none", plan.ManifestRemovals)
	}
	want := []string{"Package 'Foo-1.0.dmg' is targeted for removal, but has references in pkginfo 'p/Orphan-1' which is not targeted for removal."}
	if !slices.Equal(plan.Warnings, want) {
		t.Errorf("Warnings = %v, want %v", plan.Warnings, want)
	}
	if plan.Set().Len() != 2 {
		t.Errorf("Set() = %v", plan.Set().Strings())
	}
}

func TestBuildPlanByName(t *testing.T) {
	plan, err := BuildPlan(fixture(), PlanOptions{Names: []string{"Bar", "Missing"}})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if got, want := names(plan.Removals), []string{"Bar-1.0"}; !slices.Equal(got, want) {
		t.Errorf("Removals = %v, want %v", got, want)
	}
	if want := []string{"Bar"}; !slices.Equal(plan.ManifestRemovals, want) {
		t.Errorf("ManifestRemovals = %v, want %v", plan.ManifestRemovals, want)
	}
}

func TestBuildPlanByPath(t *testing.T) {
	plan, err := BuildPlan(fixture(), PlanOptions{Paths: []string{"p/Foo-1.0", "pkgs/stray.dmg", "p/Foo-1.0"}})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if got, want := names(plan.Removals), []string{"Foo-1.0"}; !slices.Equal(got, want) {
		t.Errorf("Removals = %v, want %v", got, want)
	}
	if want := []string{"pkgs/stray.dmg"}; !slices.Equal(plan.Artifacts, want) {
		t.Errorf("Artifacts = %v, want %v", plan.Artifacts, want)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("Warnings = %v, want the shared Foo-1.0.dmg", plan.Warnings)
	}
}

func TestBuildPlanByRelativePath(t *testing.T) {
	root := filepath.Join("/srv", "repo")
	records := []repo.Record{
		{MetadataPath: filepath.Join(root, "pkgsinfo", "Foo-1.0.plist"), Name: "Foo", Version: "1.0"},
		{MetadataPath: filepath.Join(root, "pkgsinfo", "Foo-2.0.plist"), Name: "Foo", Version: "2.0"},
	}
	in := Input{
		Graph: repo.Build(records, repo.BuildOptions{}),
		Repo:  &pkginfo.Repository{Root: root},
	}
	plan, err := BuildPlan(in, PlanOptions{Paths: []string{"pkgsinfo/Foo-1.0.plist"}})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if got, want := names(plan.Removals), []string{"Foo-1.0"}; !slices.Equal(got, want) {
		t.Errorf("Removals = %v, want %v", got, want)
	}
	if len(plan.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want none", plan.Artifacts)
	}
}

func TestBuildPlanInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts PlanOptions
	}{
		{"empty", PlanOptions{}},
		{"negative", PlanOptions{Level: -1}},
		{"categories without repo", PlanOptions{Categories: []string{"Browsers"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildPlan(fixture(), tt.opts); err == nil {
				t.Error("BuildPlan() returned nil error")
			}
		})
	}
}

func TestDiskUsage(t *testing.T) {
	in := fixture()
	all := in.Graph.Universe()
	// Orphan shares Foo-1.0's artifact.
	if got := DiskUsage(all); got != 6000 {
		t.Errorf("DiskUsage = %d, want 6000", got)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{2_500_000, "2.5 MB"},
		{3_000_000_000, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.in); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProducts(t *testing.T) {
	g := fixture().Graph
	got := Products(g, "fo")
	if len(got) != 1 || got[0].Name != "Foo" {
		t.Fatalf("Products(fo) = %+v", got)
	}
	if want := []string{"3.0b1", "2.0", "1.5", "1.0"}; !slices.Equal(got[0].Versions, want) {
		t.Errorf("Versions = %v, want %v", got[0].Versions, want)
	}
	if n := len(Products(g, "")); n != 4 {
		t.Errorf("Products() = %d names, want 4", n)
	}
}

func TestParseName(t *testing.T) {
	if _, err := ParseName("out-of-date"); err != nil {
		t.Errorf("ParseName(out-of-date) error = %v", err)
	}
	for _, bad := range []string{"", "removal-plan", "nope"} {
		if _, err := ParseName(bad); err == nil {
			t.Errorf("ParseName(%q) returned nil error", bad)
		}
	}
	if got := NameConditions.Expand(); len(got) != 4 {
		t.Errorf("conditions expand to %v", got)
	}
	if slices.Contains(Names(), NameRemovalPlan) {
		t.Error("Names() includes the removal plan")
	}
}

func TestRunNeedsInputs(t *testing.T) {
	if _, err := Run(Input{}, NameOutOfDate); err == nil {
		t.Error("Run(out-of-date) without graph returned nil error")
	}
	if _, err := Run(fixture(), NameCategories); err == nil {
		t.Error("Run(categories) without repo returned nil error")
	}
	reports, err := Run(fixture(), NameUnused)
	if err != nil || len(reports) != 1 {
		t.Fatalf("Run(unused) = %v, %v", reports, err)
	}
}
