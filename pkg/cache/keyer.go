package cache

import "slices"

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey keys a pipeline result for one repository state.
	ResultKey(fingerprint string, opts ResultKeyOpts) string
	// PlanKey keys a removal plan for one repository state.
	PlanKey(fingerprint string, opts PlanKeyOpts) string
}

// ResultKeyOpts are the options that change a pipeline result.
type ResultKeyOpts struct {
	Reports      []string `json:"reports"`
	Keep         int      `json:"keep"`
	Channels     []string `json:"channels"`
	Releases     []string `json:"releases"`
	DefaultMinOS string   `json:"default_min_os"`
	DefaultMaxOS string   `json:"default_max_os"`
}

// PlanKeyOpts are the options that change a removal plan.
type PlanKeyOpts struct {
	Level        int      `json:"level"`
	Names        []string `json:"names"`
	Categories   []string `json:"categories"`
	Paths        []string `json:"paths"`
	Channels     []string `json:"channels"`
	Releases     []string `json:"releases"`
	DefaultMinOS string   `json:"default_min_os"`
	DefaultMaxOS string   `json:"default_max_os"`
}

// DefaultKeyer hashes the fingerprint and options. Option slices whose
// order does not matter are sorted first.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(fingerprint string, opts ResultKeyOpts) string {
	opts.Reports = sorted(opts.Reports)
	opts.Channels = sorted(opts.Channels)
	return hashKey("result", fingerprint, opts)
}

// PlanKey implements [Keyer].
func (DefaultKeyer) PlanKey(fingerprint string, opts PlanKeyOpts) string {
	opts.Names = sorted(opts.Names)
	opts.Categories = sorted(opts.Categories)
	opts.Paths = sorted(opts.Paths)
	opts.Channels = sorted(opts.Channels)
	return hashKey("plan", fingerprint, opts)
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}
