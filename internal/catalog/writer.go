package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/AnyUserName/imghash/internal/phash"
)

// ErrUnsupportedVersion is returned by ReadFile for catalogs written by a
// newer schema.
var ErrUnsupportedVersion = errors.New("catalog: unsupported version")

// New creates an empty catalog for hashes produced by a.
func New(profileName string, a phash.Algorithm) *Catalog {
	return &Catalog{
		Version:     SupportedCatalogVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		Algorithm: AlgorithmInfo{
			Name: a.String(),
			ID:   FormatID(a.ID()),
			Bits: a.KeyResolution(),
		},
		Entries: make(map[string]Entry),
	}
}

// FormatID renders an algorithm identity the way catalogs store it.
func FormatID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}

// AlgorithmID parses the stored algorithm identity.
func (c *Catalog) AlgorithmID() (uint64, error) {
	id, err := strconv.ParseUint(c.Algorithm.ID, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("algorithm id %q: %w", c.Algorithm.ID, err)
	}
	return id, nil
}

// Hash rebuilds the stored hash of key.
func (c *Catalog) Hash(key string) (phash.Hash, error) {
	e, ok := c.Entries[key]
	if !ok {
		return phash.Hash{}, fmt.Errorf("entry %q not found", key)
	}
	id, err := c.AlgorithmID()
	if err != nil {
		return phash.Hash{}, err
	}
	h, err := phash.ParseHex(e.Hash, c.Algorithm.Bits, id)
	if err != nil {
		return phash.Hash{}, fmt.Errorf("entry %q: %w", key, err)
	}
	return h, nil
}

// ComputeStats recalculates aggregate statistics from entries.
func (c *Catalog) ComputeStats() {
	var s Stats
	s.TotalEntries = len(c.Entries)
	digests := map[string]bool{}
	hashes := map[string]bool{}
	for _, e := range c.Entries {
		s.TotalInputBytes += e.Size
		digests[e.Digest] = true
		hashes[e.Hash] = true
	}
	s.UniqueDigests = len(digests)
	s.UniqueHashes = len(hashes)
	c.Stats = s
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// WriteFile serializes the catalog to a JSON file with stable ordering. A
// ".zst" suffix writes it zstd-compressed.
func WriteFile(c *Catalog, path string) error {
	c.ComputeStats()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if compressed(path) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a catalog written by WriteFile. Unknown fields are
// ignored; a newer schema version is rejected.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if compressed(path) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Version > SupportedCatalogVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	return &c, nil
}
