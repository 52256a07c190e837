package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/phash"
	"github.com/AnyUserName/imghash/internal/pipeline"
)

var (
	matchMaxDistance float64
	matchLimit       int
)

var matchCmd = &cobra.Command{
	Use:   "match <catalog> <image>",
	Short: "Find catalog entries that look like an image",
	Long: `Hashes the image with the catalog's own algorithm and lists entries
within the normalized distance, closest first.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().Float64VarP(&matchMaxDistance, "max-distance", "d", 0.1, "max normalized distance")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 10, "max results (0 = all)")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(args[0])
	if err != nil {
		return err
	}

	// Default to the profile the catalog was built with.
	name := profileName
	if !cmd.Flags().Changed("profile") && c.Profile != "" {
		name = c.Profile
	}
	prof := profileFor(name)
	a, err := prof.Build()
	if err != nil {
		return err
	}
	if id, _ := c.AlgorithmID(); id != a.ID() {
		return fmt.Errorf("%w: catalog was built with %s, profile %q gives %s",
			phash.ErrIncomparableHashes, c.Algorithm.Name, prof.Name, a)
	}

	h, err := pipeline.HashFile(a, args[1])
	if err != nil {
		return err
	}
	matches, err := c.Match(h, matchMaxDistance, matchLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "  no entries within %.4f of %s\n", matchMaxDistance, args[1])
		return nil
	}
	fmt.Fprintf(out, "  %d match(es) for %s (%s):\n", len(matches), args[1], h)
	for _, m := range matches {
		fmt.Fprintf(out, "    %-40s  %3d bits  %.4f  %s\n", truncKey(m.Key, 40), m.Distance, m.Normalized, m.Entry.Hash)
	}
	return nil
}
