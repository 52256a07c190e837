package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/patrickmn/go-cache"

	"github.com/AnyUserName/imghash/internal/catalog"
	"github.com/AnyUserName/imghash/internal/hasher"
	"github.com/AnyUserName/imghash/internal/phash"
	"github.com/AnyUserName/imghash/internal/pixel"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of hashing a single source image.
type processResult struct {
	key    string
	entry  catalog.Entry
	err    error
	reused bool // hash taken from a byte-identical file
}

// memo is the cached outcome for one file digest.
type memo struct {
	hash          phash.Hash
	width, height int
	hasAlpha      bool
}

// Decode opens and decodes an image file, applying its EXIF orientation.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// HashFile decodes path and hashes it with a.
func HashFile(a phash.Algorithm, path string) (phash.Hash, error) {
	img, err := Decode(path)
	if err != nil {
		return phash.Hash{}, err
	}
	h, err := a.Hash(img)
	if err != nil {
		return phash.Hash{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return h, nil
}

// processImage handles a single source image: digest, decode, hash. Files
// whose digest is already in seen reuse the cached hash.
func processImage(src Source, a phash.Algorithm, seen *cache.Cache) processResult {
	result := processResult{key: src.Key}

	digest, err := hasher.FileHash(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}

	m, ok := lookup(seen, digest)
	if ok {
		result.reused = true
	} else {
		img, err := Decode(src.AbsPath)
		if err != nil {
			result.err = err
			return result
		}
		h, err := a.Hash(img)
		if err != nil {
			result.err = fmt.Errorf("hash %s: %w", src.RelPath, err)
			return result
		}
		b := img.Bounds()
		m = memo{
			hash:     h,
			width:    b.Dx(),
			height:   b.Dy(),
			hasAlpha: pixel.New(img).HasAlpha(),
		}
		seen.SetDefault(digest, m)
	}

	result.entry = catalog.Entry{
		Hash:     m.hash.String(),
		Width:    m.width,
		Height:   m.height,
		Format:   src.Format,
		Size:     src.Size,
		HasAlpha: m.hasAlpha,
		Digest:   digest,
	}
	return result
}

func lookup(seen *cache.Cache, digest string) (memo, bool) {
	v, ok := seen.Get(digest)
	if !ok {
		return memo{}, false
	}
	m, ok := v.(memo)
	return m, ok
}
