package profile

import (
	"fmt"

	"github.com/AnyUserName/imghash/internal/kernel"
	"github.com/AnyUserName/imghash/internal/phash"
)

// Profile selects a hashing algorithm and its resolution.
type Profile struct {
	Name      string
	Algorithm string // one of phash.Variants
	Bits      int    // requested bit resolution, rounded up to a square grid
	// Kernels for the average-kernel variant, applied in order. Empty means
	// phash.DefaultKernel.
	Kernels []kernel.Kernel
	// Threshold is the normalized distance at or below which two images
	// count as the same picture.
	Threshold float64
}

// Built-in profiles.
var profiles = map[string]Profile{
	"average-64": {
		Name:      "average-64",
		Algorithm: "average",
		Bits:      64,
		Threshold: 0.1,
	},
	"average-256": {
		Name:      "average-256",
		Algorithm: "average",
		Bits:      256,
		Threshold: 0.1,
	},
	"kernel-64": {
		Name:      "kernel-64",
		Algorithm: "average-kernel",
		Bits:      64,
		Threshold: 0.1,
	},
	"kernel-256": {
		Name:      "kernel-256",
		Algorithm: "average-kernel",
		Bits:      256,
		Kernels:   []kernel.Kernel{phash.DefaultKernel(), phash.DefaultKernel()},
		Threshold: 0.08,
	},
	"color-64": {
		Name:      "color-64",
		Algorithm: "average-color",
		Bits:      64,
		Threshold: 0.1,
	},
	"median-64": {
		Name:      "median-64",
		Algorithm: "median",
		Bits:      64,
		Threshold: 0.12,
	},
}

// Default is the profile Get falls back to.
const Default = "average-64"

// Get returns a profile by name. Falls back to average-64 if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[Default]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles.
func Names() []string {
	return []string{"average-64", "average-256", "kernel-64", "kernel-256", "color-64", "median-64"}
}

// Build constructs the profile's algorithm.
func (p Profile) Build() (phash.Algorithm, error) {
	if p.Algorithm == "average-kernel" && len(p.Kernels) > 0 {
		return phash.NewAverageKernelHash(p.Bits, p.Kernels...)
	}
	a, err := phash.ByName(p.Algorithm, p.Bits)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return a, nil
}
