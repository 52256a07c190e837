package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/catalog"
	"github.com/AnyUserName/imghash/internal/pipeline"
)

var hashCmd = &cobra.Command{
	Use:   "hash <image>...",
	Short: "Print the perceptual hash of each image",
	Long: `Prints one line per image: the hash as hex, its bit length and the
algorithm identity. Hashes are comparable only when the identity matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	_, a, err := algorithm()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		h, err := pipeline.HashFile(a, path)
		if err != nil {
			logger.Error("hash failed", "path", path, "err", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s  %d  %s  %s\n", h, h.Len(), catalog.FormatID(h.Algorithm()), path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}
