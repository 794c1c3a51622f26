package cache

// KeyVersion is embedded in every key. Bump it when the cached encoding
// changes so old entries are ignored instead of misread.
const KeyVersion = "v1"

// Keyer derives cache keys for store lookups.
type Keyer interface {
	// MetadataKey is the key for a package's metadata.
	MetadataKey(source, name string) string
	// DependenciesKey is the key for a package's direct dependency list.
	DependenciesKey(source, name string) string
}

// DefaultKeyer produces keys of the form "meta:v1:<hash>".
// The source names the backing store so that two catalogs never share
// entries for the same package name.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) MetadataKey(source, name string) string {
	return hashKey("meta:"+KeyVersion, source, name)
}

func (DefaultKeyer) DependenciesKey(source, name string) string {
	return hashKey("deps:"+KeyVersion, source, name)
}

// ScopedKeyer prepends a fixed prefix to every key of an inner keyer, which
// keeps several deployments apart on a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) MetadataKey(source, name string) string {
	return k.prefix + k.inner.MetadataKey(source, name)
}

func (k *ScopedKeyer) DependenciesKey(source, name string) string {
	return k.prefix + k.inner.DependenciesKey(source, name)
}
