package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/imghash/internal/catalog"
	"github.com/AnyUserName/imghash/internal/profile"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir string
	Profile  profile.Profile
	Workers  int
	Logger   *slog.Logger // nil discards
}

// Pipeline hashes a directory of images into a catalog.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the full build pipeline and returns the catalog. Individual
// failures are logged and skipped; the run fails only when every image
// fails or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*catalog.Catalog, error) {
	alg, err := p.cfg.Profile.Build()
	if err != nil {
		return nil, err
	}
	p.log.Debug("algorithm", "name", alg.String(), "id", catalog.FormatID(alg.ID()), "bits", alg.KeyResolution())

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.log.Info("scanned", "dir", p.cfg.InputDir, "images", len(sources))

	// Step 2: Hash images in parallel. Identical files are hashed once.
	seen := cache.New(cache.NoExpiration, 0)
	results := make([]processResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.log.Debug("processing", "key", src.Key)
			results[i] = processImage(src, alg, seen)
			if r := results[i]; r.err == nil {
				p.log.Debug("done", "key", src.Key, "hash", r.entry.Hash, "reused", r.reused)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 3: Collect results into the catalog.
	c := catalog.New(p.cfg.Profile.Name, alg)
	info := &catalog.BuildInfo{Workers: p.cfg.Workers}

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		c.Entries[r.key] = r.entry
		if r.reused {
			info.Reused++
		}
	}

	// Report errors but don't fail the entire build for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			p.log.Error("image failed", "err", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		p.log.Warn("partial build", "failed", len(errs), "total", len(sources))
	}

	info.Failed = len(errs)
	c.BuildInfo = info
	c.ComputeStats()
	return c, nil
}
