package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dupesMaxDistance int

var dupesCmd = &cobra.Command{
	Use:   "dupes <catalog>",
	Short: "List near-duplicate pairs in a catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDupes,
}

func init() {
	dupesCmd.Flags().IntVarP(&dupesMaxDistance, "max-distance", "d", 4, "max Hamming distance in bits")
	rootCmd.AddCommand(dupesCmd)
}

func runDupes(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(args[0])
	if err != nil {
		return err
	}
	pairs, err := c.Duplicates(dupesMaxDistance)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %d pair(s) within %d bits among %d entries\n", len(pairs), dupesMaxDistance, len(c.Entries))
	for _, p := range pairs {
		fmt.Fprintf(out, "    %3d  %-36s  %s\n", p.Distance, truncKey(p.A, 36), p.B)
	}
	return nil
}
