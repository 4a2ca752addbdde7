package cache

// ScopedKeyer prefixes every key from an inner Keyer. The CLI uses it to
// keep entries for different repository roots apart in a shared Redis.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "repo:"+Hash([]byte(root))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner keyer
// uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements [Keyer].
func (k *ScopedKeyer) ResultKey(fingerprint string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(fingerprint, opts)
}

// PlanKey implements [Keyer].
func (k *ScopedKeyer) PlanKey(fingerprint string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(fingerprint, opts)
}
