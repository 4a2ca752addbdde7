package pkginfo

import (
	"slices"
)

// Manifest is a deployment manifest. The same shape is used for the
// entries of conditional_items, which carry a Condition and may nest
// further.
type Manifest struct {
	Condition         string     `plist:"condition,omitempty" yaml:"condition,omitempty" json:"condition,omitempty"`
	Catalogs          []string   `plist:"catalogs,omitempty" yaml:"catalogs,omitempty" json:"catalogs,omitempty"`
	IncludedManifests []string   `plist:"included_manifests,omitempty" yaml:"included_manifests,omitempty" json:"included_manifests,omitempty"`
	ManagedInstalls   []string   `plist:"managed_installs,omitempty" yaml:"managed_installs,omitempty" json:"managed_installs,omitempty"`
	ManagedUninstalls []string   `plist:"managed_uninstalls,omitempty" yaml:"managed_uninstalls,omitempty" json:"managed_uninstalls,omitempty"`
	OptionalInstalls  []string   `plist:"optional_installs,omitempty" yaml:"optional_installs,omitempty" json:"optional_installs,omitempty"`
	ManagedUpdates    []string   `plist:"managed_updates,omitempty" yaml:"managed_updates,omitempty" json:"managed_updates,omitempty"`
	ConditionalItems  []Manifest `plist:"conditional_items,omitempty" yaml:"conditional_items,omitempty" json:"conditional_items,omitempty"`
}

// Items returns every item the manifest names in its four collections,
// including nested conditional items, in document order.
func (m *Manifest) Items() []string {
	var out []string
	out = append(out, m.ManagedInstalls...)
	out = append(out, m.ManagedUninstalls...)
	out = append(out, m.OptionalInstalls...)
	out = append(out, m.ManagedUpdates...)
	for i := range m.ConditionalItems {
		out = append(out, m.ConditionalItems[i].Items()...)
	}
	return out
}

// EntryPoints returns the sorted, deduplicated union of [Manifest.Items]
// across manifests.
func EntryPoints(manifests []*Manifest) []string {
	var out []string
	for _, m := range manifests {
		out = append(out, m.Items()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
