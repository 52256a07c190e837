package phash

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Hash is a perceptual hash: a fixed-length bit string tagged with the
// identity of the algorithm that produced it.
//
// Bit i is cell i of the hash grid in row-major order. In the numeric form
// (BigInt, String, MarshalBinary) bit 0 is the most significant of Len()
// bits; the length travels alongside the number so leading zero bits are
// never lost.
//
// A Hash is immutable. The zero value is an empty hash that is comparable
// to nothing but itself.
type Hash struct {
	bits      *bitset.BitSet
	length    uint
	algorithm uint64
}

// FromBigInt rebuilds a hash from its numeric form. v must be non-negative
// and fit in length bits.
func FromBigInt(v *big.Int, length int, algorithm uint64) (Hash, error) {
	if length <= 0 {
		return Hash{}, fmt.Errorf("%w: bit length %d", ErrInvalidArgument, length)
	}
	if v == nil || v.Sign() < 0 {
		return Hash{}, fmt.Errorf("%w: negative or nil value", ErrInvalidArgument)
	}
	if v.BitLen() > length {
		return Hash{}, fmt.Errorf("%w: value needs %d bits, length is %d", ErrInvalidArgument, v.BitLen(), length)
	}
	n := uint(length)
	b := bitset.New(n)
	for i := 0; i < v.BitLen(); i++ {
		if v.Bit(i) == 1 {
			b.Set(n - 1 - uint(i))
		}
	}
	return Hash{bits: b, length: n, algorithm: algorithm}, nil
}

// ParseHex rebuilds a hash from the hex form returned by String.
func ParseHex(s string, length int, algorithm uint64) (Hash, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Hash{}, fmt.Errorf("%w: bad hex %q", ErrInvalidArgument, s)
	}
	return FromBigInt(v, length, algorithm)
}

// Len returns the number of bits.
func (h Hash) Len() int { return int(h.length) }

// Algorithm returns the identity of the producing algorithm.
func (h Hash) Algorithm() uint64 { return h.algorithm }

// Bit reports whether bit i (row-major grid cell i) is set. It panics when i
// is out of range.
func (h Hash) Bit(i int) bool {
	if i < 0 || uint(i) >= h.length {
		panic(fmt.Sprintf("phash: bit %d out of range [0,%d)", i, h.length))
	}
	return h.bits.Test(uint(i))
}

// BigInt returns the numeric form: a non-negative integer below 2^Len().
func (h Hash) BigInt() *big.Int {
	v := new(big.Int)
	if h.bits == nil {
		return v
	}
	for i, ok := h.bits.NextSet(0); ok && i < h.length; i, ok = h.bits.NextSet(i + 1) {
		v.SetBit(v, int(h.length-1-i), 1)
	}
	return v
}

// String returns the numeric form as lowercase hex, zero padded to
// ceil(Len()/4) digits.
func (h Hash) String() string {
	digits := int(h.length+3) / 4
	s := h.BigInt().Text(16)
	if len(s) < digits {
		s = strings.Repeat("0", digits-len(s)) + s
	}
	return s
}

func (h Hash) comparable(o Hash) error {
	if h.length != o.length {
		return fmt.Errorf("%w: %d bits vs %d bits", ErrIncomparableHashes, h.length, o.length)
	}
	if h.algorithm != o.algorithm {
		return fmt.Errorf("%w: algorithm %016x vs %016x", ErrIncomparableHashes, h.algorithm, o.algorithm)
	}
	return nil
}

// HammingDistance returns the number of differing bits. Hashes of different
// length or algorithm fail with ErrIncomparableHashes.
func (h Hash) HammingDistance(o Hash) (int, error) {
	if err := h.comparable(o); err != nil {
		return 0, err
	}
	if h.length == 0 {
		return 0, nil
	}
	return int(h.bits.SymmetricDifferenceCardinality(o.bits)), nil
}

// NormalizedDistance returns HammingDistance / Len(), in [0, 1].
func (h Hash) NormalizedDistance(o Hash) (float64, error) {
	d, err := h.HammingDistance(o)
	if err != nil || h.length == 0 {
		return 0, err
	}
	return float64(d) / float64(h.length), nil
}

// Similar reports whether the normalized distance to o is at most threshold.
func (h Hash) Similar(o Hash, threshold float64) (bool, error) {
	d, err := h.NormalizedDistance(o)
	if err != nil {
		return false, err
	}
	return d <= threshold, nil
}

// Equal reports whether both hashes carry the same bits and the same
// algorithm identity.
func (h Hash) Equal(o Hash) bool {
	if h.comparable(o) != nil {
		return false
	}
	if h.length == 0 {
		return true
	}
	return h.bits.Equal(o.bits)
}

const headerSize = 8 + 4

// MarshalBinary encodes the algorithm identity (8 bytes), the bit length
// (4 bytes) and the numeric form (ceil(Len()/8) bytes), all big-endian.
func (h Hash) MarshalBinary() ([]byte, error) {
	n := int(h.length+7) / 8
	buf := make([]byte, headerSize+n)
	binary.BigEndian.PutUint64(buf, h.algorithm)
	binary.BigEndian.PutUint32(buf[8:], uint32(h.length))
	h.BigInt().FillBytes(buf[headerSize:])
	return buf, nil
}

// UnmarshalBinary decodes the form written by MarshalBinary.
func (h *Hash) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidArgument, len(data), headerSize)
	}
	algorithm := binary.BigEndian.Uint64(data)
	length := binary.BigEndian.Uint32(data[8:])
	payload := data[headerSize:]
	if want := (int(length) + 7) / 8; len(payload) != want {
		return fmt.Errorf("%w: %d payload bytes for %d bits", ErrInvalidArgument, len(payload), length)
	}
	v, err := FromBigInt(new(big.Int).SetBytes(payload), int(length), algorithm)
	if err != nil {
		return err
	}
	*h = v
	return nil
}
