package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/pipeline"
)

var compareThreshold float64

var compareCmd = &cobra.Command{
	Use:   "compare <image_a> <image_b>",
	Short: "Compare two images by perceptual hash distance",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().Float64VarP(&compareThreshold, "threshold", "t", -1,
		"max normalized distance for a match (negative = profile default)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	prof, a, err := algorithm()
	if err != nil {
		return err
	}
	threshold := compareThreshold
	if threshold < 0 {
		threshold = prof.Threshold
	}

	ha, err := pipeline.HashFile(a, args[0])
	if err != nil {
		return err
	}
	hb, err := pipeline.HashFile(a, args[1])
	if err != nil {
		return err
	}
	d, err := ha.HammingDistance(hb)
	if err != nil {
		return err
	}
	n, err := ha.NormalizedDistance(hb)
	if err != nil {
		return err
	}

	verdict := "different"
	if n <= threshold {
		verdict = "similar"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s  %s\n", ha, args[0])
	fmt.Fprintf(out, "  %s  %s\n", hb, args[1])
	fmt.Fprintf(out, "  Algorithm:   %s\n", a)
	fmt.Fprintf(out, "  Hamming:     %d / %d bits\n", d, ha.Len())
	fmt.Fprintf(out, "  Normalized:  %.4f (threshold %.4f)\n", n, threshold)
	fmt.Fprintf(out, "  Verdict:     %s\n", verdict)
	return nil
}
