package catalog

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/imghash/internal/phash"
)

// Match is a catalog entry near a query hash.
type Match struct {
	Key        string
	Entry      Entry
	Distance   int
	Normalized float64
}

// Pair is two entries whose hashes are within a duplicate threshold.
type Pair struct {
	A, B     string
	Distance int
}

type keyedHash struct {
	key  string
	hash phash.Hash
}

// hashes parses every entry, ordered by key.
func (c *Catalog) hashes() ([]keyedHash, error) {
	id, err := c.AlgorithmID()
	if err != nil {
		return nil, err
	}
	out := make([]keyedHash, 0, len(c.Entries))
	for key, e := range c.Entries {
		h, err := phash.ParseHex(e.Hash, c.Algorithm.Bits, id)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		out = append(out, keyedHash{key: key, hash: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

// Match returns the entries whose normalized distance to h is at most
// maxNormalized, closest first and then by key. limit <= 0 means no limit.
// A hash from another algorithm fails with phash.ErrIncomparableHashes.
func (c *Catalog) Match(h phash.Hash, maxNormalized float64, limit int) ([]Match, error) {
	id, err := c.AlgorithmID()
	if err != nil {
		return nil, err
	}
	if h.Algorithm() != id || h.Len() != c.Algorithm.Bits {
		return nil, fmt.Errorf("%w: query is %d bits from %s, catalog is %d bits from %s",
			phash.ErrIncomparableHashes, h.Len(), FormatID(h.Algorithm()), c.Algorithm.Bits, c.Algorithm.ID)
	}
	hashes, err := c.hashes()
	if err != nil {
		return nil, err
	}

	var out []Match
	for _, kh := range hashes {
		d, err := h.HammingDistance(kh.hash)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", kh.key, err)
		}
		n := float64(d) / float64(h.Len())
		if n > maxNormalized {
			continue
		}
		out = append(out, Match{Key: kh.key, Entry: c.Entries[kh.key], Distance: d, Normalized: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Duplicates returns every pair of entries whose Hamming distance is at
// most maxDistance, closest first and then by key.
func (c *Catalog) Duplicates(maxDistance int) ([]Pair, error) {
	hashes, err := c.hashes()
	if err != nil {
		return nil, err
	}
	var out []Pair
	for i := range hashes {
		for j := i + 1; j < len(hashes); j++ {
			d, err := hashes[i].hash.HammingDistance(hashes[j].hash)
			if err != nil {
				return nil, err
			}
			if d <= maxDistance {
				out = append(out, Pair{A: hashes[i].key, B: hashes[j].key, Distance: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}
