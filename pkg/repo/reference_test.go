package repo

import "testing"

func TestParseReference(t *testing.T) {
	tests := []struct {
		in   string
		want Reference
	}{
		{"AdobePhotoshopCS3--11.2.1", Reference{"AdobePhotoshopCS3", "11.2.1"}},
		{"TextWrangler-2.3b1", Reference{"TextWrangler", "2.3b1"}},
		{"MicrosoftOffice2008-12.2.1", Reference{"MicrosoftOffice2008", "12.2.1"}},
		{"no-version-here", Reference{"no-version-here", ""}},
		{"Firefox", Reference{"Firefox", ""}},
		{"Foo--bar-1.0", Reference{"Foo--bar", "1.0"}},
		{"trailing-", Reference{"trailing-", ""}},
		{"a-b-2", Reference{"a-b", "2"}},
		{"Foo---1.0", Reference{"Foo--", "1.0"}},
		{"Foo----1.0", Reference{"Foo--", "1.0"}},
		{"Foo--2--1.0", Reference{"Foo--2", "1.0"}},
		{"", Reference{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseReference(tt.in); got != tt.want {
				t.Errorf("ParseReference(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLastSplit(t *testing.T) {
	tests := []struct {
		s, delim string
		want     int
	}{
		{"Foo---1.0", "--", 3},
		{"Foo----1.0", "--", 5},
		{"a--b--c", "--", 4},
		{"abc", "--", -1},
		{"a-b-c", "-", 3},
	}
	for _, tt := range tests {
		if got := lastSplit(tt.s, tt.delim); got != tt.want {
			t.Errorf("lastSplit(%q, %q) = %d, want %d", tt.s, tt.delim, got, tt.want)
		}
	}
}

func TestReferenceString(t *testing.T) {
	if got := (Reference{Name: "Foo"}).String(); got != "Foo" {
		t.Errorf("String() = %q, want %q", got, "Foo")
	}
	if got := (Reference{Name: "Foo", Version: "1.0"}).String(); got != "Foo-1.0" {
		t.Errorf("String() = %q, want %q", got, "Foo-1.0")
	}
}
