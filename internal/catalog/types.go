package catalog

// Catalog is the top-level output of an imghash build: one perceptual hash
// per source image, all produced by the same algorithm.
type Catalog struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	Algorithm   AlgorithmInfo    `json:"algorithm"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Entries     map[string]Entry `json:"entries"`
	Stats       Stats            `json:"stats"`
}

// AlgorithmInfo identifies the producer of every hash in the catalog.
type AlgorithmInfo struct {
	Name string `json:"name"` // e.g. "average(8x8)"
	ID   string `json:"id"`   // algorithm identity, 16 hex chars
	Bits int    `json:"bits"` // hash length
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int `json:"workers"`
	Reused  int `json:"reused"` // entries whose hash came from an identical file
	Failed  int `json:"failed,omitempty"`
}

// Entry describes a single source image and its hash.
type Entry struct {
	Hash     string `json:"hash"` // numeric form, zero-padded hex
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
	Digest   string `json:"digest"` // xxhash64 of the file bytes
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes int64 `json:"total_input_bytes"`
	TotalEntries    int   `json:"total_entries"`
	UniqueDigests   int   `json:"unique_digests"`
	UniqueHashes    int   `json:"unique_hashes"`
}

// SupportedCatalogVersion is the current schema version.
const SupportedCatalogVersion = 1

// DefaultFileName is the catalog name used when the output is a directory.
const DefaultFileName = "imghash.catalog.json"
