package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats <dir_or_catalog>",
	Short: "Display statistics for a hash catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// loadCatalog reads a catalog file, or the default catalog inside a
// directory.
func loadCatalog(path string) (*catalog.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, catalog.DefaultFileName)
	}
	c, err := catalog.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	logger.Debug("catalog loaded", "path", path, "entries", len(c.Entries))
	return c, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(args[0])
	if err != nil {
		return err
	}
	printStats(cmd, c)
	return nil
}

func printStats(cmd *cobra.Command, c *catalog.Catalog) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Catalog version:  %d\n", c.Version)
	fmt.Fprintf(out, "  Generated:        %s\n", c.GeneratedAt)
	fmt.Fprintf(out, "  Profile:          %s\n", c.Profile)
	fmt.Fprintf(out, "  Algorithm:        %s (%d bits, id %s)\n", c.Algorithm.Name, c.Algorithm.Bits, c.Algorithm.ID)
	if c.BuildInfo != nil {
		fmt.Fprintf(out, "  Workers:          %d\n", c.BuildInfo.Workers)
		fmt.Fprintf(out, "  Reused hashes:    %d\n", c.BuildInfo.Reused)
	}
	fmt.Fprintln(out)

	s := c.Stats
	fmt.Fprintf(out, "  Total entries:    %d\n", s.TotalEntries)
	fmt.Fprintf(out, "  Unique files:     %d\n", s.UniqueDigests)
	fmt.Fprintf(out, "  Unique hashes:    %d\n", s.UniqueHashes)
	fmt.Fprintf(out, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintln(out)

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, e := range c.Entries {
		fs := formatStats[e.Format]
		fs.count++
		fs.bytes += e.Size
		formatStats[e.Format] = fs
	}
	var formats []string
	for f := range formatStats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	fmt.Fprintln(out, "  Format breakdown:")
	for _, f := range formats {
		fs := formatStats[f]
		fmt.Fprintf(out, "    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
	}
	fmt.Fprintln(out)

	// Flat hashes: every bit equal.
	var skewed []string
	for key := range c.Entries {
		h, err := c.Hash(key)
		if err != nil {
			continue
		}
		count := 0
		for i := 0; i < h.Len(); i++ {
			if h.Bit(i) {
				count++
			}
		}
		if count == 0 || count == h.Len() {
			skewed = append(skewed, key)
		}
	}
	sort.Strings(skewed)

	// Warnings.
	var warnings []string
	for _, key := range skewed {
		warnings = append(warnings, fmt.Sprintf("entry %q hashes to a flat image (all bits equal)", key))
	}
	if n := s.TotalEntries - s.UniqueHashes; n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d entries share an exact hash with another entry", n))
	}
	if len(warnings) > 0 {
		fmt.Fprintf(out, "  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(out, "    ! %s\n", w)
		}
		fmt.Fprintln(out)
	}
}
