package phash

import (
	"errors"

	"github.com/AnyUserName/imghash/internal/kernel"
)

var (
	// ErrInvalidArgument is returned for bad constructor arguments: a
	// non-positive bit resolution, an empty or zero kernel list, a kernel
	// larger than the hash grid, or an empty image.
	ErrInvalidArgument = errors.New("phash: invalid argument")

	// ErrIncomparableHashes is returned when two hashes differ in length or
	// algorithm identity.
	ErrIncomparableHashes = errors.New("phash: incomparable hashes")

	// ErrInvalidDimensions is kernel.ErrInvalidDimensions, surfaced by Hash
	// when a kernel cannot be applied to the rescaled grid.
	ErrInvalidDimensions = kernel.ErrInvalidDimensions
)
