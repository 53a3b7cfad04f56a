package cache

// ScopedKeyer prefixes every key of an inner keyer, so that several
// namespaces (surveys, sites, users) can share one backend:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "baseline_v4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner; a nil inner means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) VisitsKey(source string, opts VisitsKeyOpts) string {
	return k.prefix + k.inner.VisitsKey(source, opts)
}

func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
