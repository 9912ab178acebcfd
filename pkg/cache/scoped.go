package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each deployment or
// dataset directory its own key namespace in a shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "demo:")
//	keyer.RecordsKey("dir", "mtcars") // "demo:records:dir:mtcars"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) RecordsKey(source, name string) string {
	return k.prefix + k.inner.RecordsKey(source, name)
}
