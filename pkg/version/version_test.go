package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "2.0", -1},
		{"2.0", "1.5", 1},
		{"10.9", "10.12", -1},
		{"10.9", "10.9.0", -1},
		{"10.12.99", "10.12.9", 1},
		{"1.01", "1.1", 0},
		{"2.3b1", "2.3", 1},
		{"2.3b1", "2.3b2", -1},
		{"2.3a1", "2.3b1", -1},
		{"2.3.1", "2.3b1", -1},
		{"20230101120000", "9", 1},
		{"", "0", -1},
		{"", "", 0},
		{"1.0-RC", "1.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestParseKeepsRaw(t *testing.T) {
	v := Parse("11.2.1")
	if v.String() != "11.2.1" {
		t.Errorf("String() = %q, want %q", v.String(), "11.2.1")
	}
	if v.IsZero() {
		t.Error("IsZero() = true for non-empty version")
	}
	if !Parse("").IsZero() {
		t.Error("IsZero() = false for empty version")
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange("", "", "10.4.0", "10.12.99")

	tests := []struct {
		v    string
		want bool
	}{
		{"10.4.0", true},
		{"10.3.9", false},
		{"10.8.0", true},
		{"10.12.9", true},
		{"10.12.99", true},
		{"10.13.0", false},
	}
	for _, tt := range tests {
		if got := r.Contains(Parse(tt.v)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNewRangeExplicitBounds(t *testing.T) {
	r := NewRange("10.9", "10.12", "10.4.0", "10.12.99")
	if r.String() != "10.9 - 10.12" {
		t.Errorf("String() = %q", r.String())
	}
	// "10.12.5" is longer than "10.12" and therefore sorts after it.
	if r.Contains(Parse("10.12.5")) {
		t.Error("10.12.5 should be outside 10.9 - 10.12")
	}
	if !r.Contains(Parse("10.10")) {
		t.Error("10.10 should be inside 10.9 - 10.12")
	}
}
