package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data as 16 hex chars. Catalogs use
// it to detect byte-identical files, which then share one perceptual hash.
func ContentHash(data []byte) string {
	return hexSum(xxhash.Sum64(data))
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hexSum(h.Sum64()), nil
}

// FileHash streams the file at path through ContentHashReader.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ContentHashReader(f)
}

func hexSum(v uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return hex.EncodeToString(b[:])
}
