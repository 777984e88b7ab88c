package cache

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for the document
	// with the given content hash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds everything besides the document bytes that changes
// a rendered artifact.
type ArtifactKeyOpts struct {
	DocFormat string   `json:"doc_format"`
	Format    string   `json:"format"`
	Channels  int      `json:"channels"`
	Palette   []string `json:"palette,omitempty"`
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the document hash together with opts.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

var _ Keyer = DefaultKeyer{}
