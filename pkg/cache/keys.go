package cache

// Fingerprint identifies the content of one file without reading it.
type Fingerprint struct {
	Path    string `json:"p"`
	Size    int64  `json:"s"`
	ModTime int64  `json:"m"`
}

// Keyer builds cache keys for measured costs.
type Keyer interface {
	// CostKey returns the key for the compressed size of files, in the given
	// order, under scheme.
	CostKey(scheme string, files []Fingerprint) string
}

// DefaultKeyer hashes every component of the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CostKey returns "cost:<sha256>" over scheme and the ordered fingerprints.
func (DefaultKeyer) CostKey(scheme string, files []Fingerprint) string {
	return hashKey("cost", scheme, files)
}

// ScopedKeyer prepends a fixed prefix to every key of an inner keyer. It is
// used to give each user or project its own namespace in a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer is replaced
// by the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CostKey returns the prefixed key of the inner keyer.
func (k *ScopedKeyer) CostKey(scheme string, files []Fingerprint) string {
	return k.prefix + k.inner.CostKey(scheme, files)
}
