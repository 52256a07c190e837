package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/catalog"
	"github.com/AnyUserName/imghash/internal/pipeline"
)

var (
	buildOut     string
	buildWorkers int
)

var buildCmd = &cobra.Command{
	Use:   "build <input_dir>",
	Short: "Hash every image in a directory into a catalog",
	Long: `Scans input directory for images (png, jpg, jpeg, gif, bmp, tiff, webp),
computes one perceptual hash per image with the selected profile, and
writes a catalog file. Byte-identical files are hashed once.

A catalog path ending in .zst is written zstd-compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", catalog.DefaultFileName, "catalog path")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOut)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof := resolveProfile()
	logger.Debug("build", "input", absInput, "output", absOutput, "profile", prof.Name,
		"algorithm", prof.Algorithm, "bits", prof.Bits)

	if err := os.MkdirAll(filepath.Dir(absOutput), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir: absInput,
		Profile:  prof,
		Workers:  buildWorkers,
		Logger:   logger,
	})
	c, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := catalog.WriteFile(c, absOutput); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	printBuildReport(cmd, c, absOutput, time.Since(start))
	return nil
}

func printBuildReport(cmd *cobra.Command, c *catalog.Catalog, path string, elapsed time.Duration) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  imghash build complete")
	fmt.Fprintln(out)

	s := c.Stats
	fmt.Fprintf(out, "  Entries:     %d\n", s.TotalEntries)
	fmt.Fprintf(out, "  Unique:      %d files, %d hashes\n", s.UniqueDigests, s.UniqueHashes)
	fmt.Fprintf(out, "  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(out, "  Algorithm:   %s (%d bits, id %s)\n", c.Algorithm.Name, c.Algorithm.Bits, c.Algorithm.ID)
	if c.BuildInfo != nil {
		fmt.Fprintf(out, "  Workers:     %d\n", c.BuildInfo.Workers)
		if c.BuildInfo.Failed > 0 {
			fmt.Fprintf(out, "  Failed:      %d images\n", c.BuildInfo.Failed)
		}
	}
	fmt.Fprintf(out, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(out)

	// Top 10 heaviest entries.
	if len(c.Entries) > 0 {
		type entrySize struct {
			key  string
			size int64
		}
		var items []entrySize
		for key, e := range c.Entries {
			items = append(items, entrySize{key, e.Size})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].size != items[j].size {
				return items[i].size > items[j].size
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Fprintf(out, "  Top %d heaviest:\n", n)
		for _, it := range items[:n] {
			fmt.Fprintf(out, "    %-40s %8s  %s\n", truncKey(it.key, 40), formatBytes(it.size), c.Entries[it.key].Hash)
		}
		fmt.Fprintln(out)
	}

	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  Catalog:     %s (%s)\n", filepath.Base(path), formatBytes(info.Size()))
		fmt.Fprintln(out)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
