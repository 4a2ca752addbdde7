package repo

import (
	"slices"
	"testing"
)

func TestSetOperations(t *testing.T) {
	g := Build(append(fooRecords(), rec("Bar", "1.0", nil, nil)), BuildOptions{})
	foo := g.Lookup("Foo")
	bar := g.Lookup("Bar")

	a := NewSet(foo[0], foo[1])
	b := NewSet(foo[1], foo[2], bar[0])

	tests := []struct {
		name string
		got  Set
		want []string
	}{
		{"union", a.Union(b), []string{"Bar-1.0", "Foo-2.0", "Foo-1.5", "Foo-1.0"}},
		{"difference", a.Difference(b), []string{"Foo-2.0"}},
		{"intersect", a.Intersect(b), []string{"Foo-1.5"}},
		{"nil union", Set(nil).Union(a), []string{"Foo-2.0", "Foo-1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.Strings(); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if a.Len() != 2 {
		t.Errorf("a was modified: %v", a.Strings())
	}
	a.Add(foo[0])
	if a.Len() != 2 {
		t.Errorf("Add of existing member changed Len to %d", a.Len())
	}
	if !a.Intersect(b).SubsetOf(a) || a.SubsetOf(b) {
		t.Error("SubsetOf returned unexpected result")
	}
	if !a.Equal(NewSet(foo[1], foo[0])) || a.Equal(b) {
		t.Error("Equal returned unexpected result")
	}
}
