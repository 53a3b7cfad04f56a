package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// VisitsKey addresses visits loaded from an opsim database.
	VisitsKey(source string, opts VisitsKeyOpts) string
	// ArtifactKey addresses one rendered output of an input.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// VisitsKeyOpts are the query parameters that select a set of visits.
type VisitsKeyOpts struct {
	ModTime int64  `json:"mod_time"` // source file modification time, unix nanoseconds
	Where   string `json:"where,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ArtifactKeyOpts are the render parameters that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Variant    string  `json:"variant"`
	Format     string  `json:"format"`
	ConfigHash string  `json:"config_hash"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) VisitsKey(source string, opts VisitsKeyOpts) string {
	return hashKey("visits", source, opts)
}

func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

var _ Keyer = DefaultKeyer{}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
