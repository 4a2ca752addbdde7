package repo

import (
	"fmt"
	"slices"
	"sync"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// KindDanglingReference marks a requirement, update target or entry
	// point that names a package or version absent from the graph.
	KindDanglingReference Kind = iota
	// KindZeroReachability marks an entry point with no version valid for
	// any simulated OS release.
	KindZeroReachability
	// KindMalformedReference marks a reference that did not split into a
	// name and version although its prefix names a known package.
	KindMalformedReference
	// KindDuplicateVersion marks two metadata records sharing a name and version.
	KindDuplicateVersion
	// KindInvalidRecord marks a metadata record without a name or version.
	KindInvalidRecord
)

var kindNames = map[Kind]string{
	KindDanglingReference:  "dangling-reference",
	KindZeroReachability:   "zero-reachability",
	KindMalformedReference: "malformed-reference",
	KindDuplicateVersion:   "duplicate-version",
	KindInvalidRecord:      "invalid-record",
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", text)
}

// Diagnostic is a single human-readable finding.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Diagnostics is an append-only, deduplicated, insertion-ordered set of
// findings. It never fails; callers decide whether a non-empty set is fatal.
// It is safe for concurrent use.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
	seen  map[string]struct{}
}

// Addf records a diagnostic. Identical messages are recorded once.
func (d *Diagnostics) Addf(kind Kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[msg]; ok {
		return
	}
	d.seen[msg] = struct{}{}
	d.items = append(d.items, Diagnostic{Kind: kind, Message: msg})
}

// All returns a copy of every diagnostic in insertion order.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.items)
}

// Strings returns the diagnostic messages in insertion order.
func (d *Diagnostics) Strings() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.items))
	for i, it := range d.items {
		out[i] = it.Message
	}
	return out
}

// OfKind returns the diagnostics of the given kind in insertion order.
func (d *Diagnostics) OfKind(k Kind) []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Diagnostic
	for _, it := range d.items {
		if it.Kind == k {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Empty reports whether nothing has been recorded.
func (d *Diagnostics) Empty() bool { return d.Len() == 0 }
