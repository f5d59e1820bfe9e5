package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// HTTPKey is the key for a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// ManifestKey is the key for a house manifest fetched from source.
	ManifestKey(source string) string

	// GraphKey is the key for a rendered room graph of a manifest.
	GraphKey(manifestHash string, opts GraphKeyOpts) string
}

// GraphKeyOpts are the render options that change a room graph artifact.
type GraphKeyOpts struct {
	Format   string `json:"format"`
	Layout   string `json:"layout,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	ShowMap  bool   `json:"show_map,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ManifestKey hashes the source so URLs with query strings are safe keys.
func (DefaultKeyer) ManifestKey(source string) string {
	return hashKey("manifest", source)
}

// GraphKey hashes the manifest hash together with the render options.
func (DefaultKeyer) GraphKey(manifestHash string, opts GraphKeyOpts) string {
	return hashKey("graph", manifestHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
