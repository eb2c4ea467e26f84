package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/matzehuels/arborist/pkg/params"
)

// TreeKeyOpts holds the inputs that determine a generated tree.
type TreeKeyOpts struct {
	Params          params.Params `json:"params"`
	Seed            uint64        `json:"seed"`
	ConsumeOnAttach bool          `json:"consume_on_attach"`
}

// ArtifactKeyOpts holds the inputs that determine a rendered artifact.
type ArtifactKeyOpts struct {
	VizType string  `json:"viz_type"`
	Format  string  `json:"format"`
	Scale   float64 `json:"scale,omitempty"`
	// Appearance is any comparable description of geometry and style.
	Appearance any `json:"appearance,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	TreeKey(opts TreeKeyOpts) string
	ArtifactKey(treeKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TreeKey returns the key identifying a seeded tree.
func (DefaultKeyer) TreeKey(opts TreeKeyOpts) string {
	return hashKey("tree", opts)
}

// ArtifactKey returns the key for one rendering of a tree.
func (DefaultKeyer) ArtifactKey(treeKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeKey, opts)
}

// hashKey returns "kind:" followed by the SHA-256 of the JSON-encoded parts.
// Struct fields encode in declaration order, so equal options give equal keys.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
