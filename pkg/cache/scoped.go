package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tours can share
// one Redis instance without colliding.
//
// Example usage:
//
//	houseKeyer := NewScopedKeyer(NewDefaultKeyer(), "house:12:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ManifestKey generates a prefixed key for manifest caching.
func (k *ScopedKeyer) ManifestKey(source string) string {
	return k.prefix + k.inner.ManifestKey(source)
}

// GraphKey generates a prefixed key for room graph caching.
func (k *ScopedKeyer) GraphKey(manifestHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(manifestHash, opts)
}
