package cache

// Keyer names cache entries.
type Keyer interface {
	// GraphKey names the latest snapshot of a named graph.
	GraphKey(name string) string
	// DigestKey names a snapshot by content hash.
	DigestKey(hash string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "graph:<name>".
func (DefaultKeyer) GraphKey(name string) string { return "graph:" + name }

// DigestKey returns "digest:<hash>".
func (DefaultKeyer) DigestKey(hash string) string { return "digest:" + hash }

// ScopedKeyer wraps a Keyer with a namespace prefix.
//
//	keys := cache.NewScopedKeyer(nil, "team-a:")
//	keys.GraphKey("deps") // "team-a:graph:deps"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey returns the prefixed graph key.
func (k *ScopedKeyer) GraphKey(name string) string { return k.prefix + k.inner.GraphKey(name) }

// DigestKey returns the prefixed digest key.
func (k *ScopedKeyer) DigestKey(hash string) string { return k.prefix + k.inner.DigestKey(hash) }
