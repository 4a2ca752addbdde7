// Package version compares loosely structured version strings.
//
// # Overview
//
// Package metadata in a software repository rarely follows strict semantic
// versioning. Vendors publish versions like "2.3b1", "11.2.1", "10.12.99"
// or "2019.0417". This package implements the forgiving comparison rules that
// catalog tooling has traditionally relied on: a version is split into a
// sequence of numeric and alphabetic components and compared component-wise.
//
// # Comparison Rules
//
// A version string is tokenized into runs of digits, runs of lowercase
// letters, and any other non-dot characters. Dots are separators and are
// discarded:
//
//	"2.3b1"    → [2 3 "b" 1]
//	"10.12.99" → [10 12 99]
//	"1.0-RC"   → [1 0 "-RC"]
//
// Components are compared pairwise:
//   - two numbers compare numerically (leading zeros are ignored)
//   - two strings compare lexically
//   - a number always sorts before a string
//
// When one version is a prefix of the other, the shorter one is less, so
// "10.9" < "10.9.0".
//
// # Usage
//
//	version.Compare("2.3b1", "2.3")  // 1
//	version.Less("10.9", "10.12")    // true
//
//	r := version.Range{Min: version.Parse("10.9"), Max: version.Parse("10.12.99")}
//	r.Contains(version.Parse("10.11.4")) // true
package version
