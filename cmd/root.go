package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/phash"
	"github.com/AnyUserName/imghash/internal/profile"
)

var (
	version     = "0.1.0"
	verbose     bool
	logFormat   string
	profileName string
	bitsFlag    int
	algoFlag    string

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "imghash",
	Short: "Perceptual image hashing and near-duplicate search",
	Long: `imghash computes perceptual hashes of images: visually similar images
get hashes with a small Hamming distance, regardless of pixel format,
re-encoding or scale.

Hash single files, compare two images, or build a catalog of a directory
and query it for matches and near-duplicates.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

// Execute runs the root command; an interrupt cancels long-running builds.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVarP(&profileName, "profile", "p", profile.Default,
		"hashing profile ("+strings.Join(profile.Names(), ", ")+")")
	pf.IntVar(&bitsFlag, "bits", 0, "bit resolution (0 = profile default)")
	pf.StringVar(&algoFlag, "algorithm", "",
		"algorithm override ("+strings.Join(phash.Variants, ", ")+")")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imghash %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setupLogger() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch logFormat {
	case "text":
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	case "json":
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", logFormat)
	}
	slog.SetDefault(logger)
	return nil
}

// resolveProfile loads --profile and applies the --bits and --algorithm
// overrides.
func resolveProfile() profile.Profile {
	return profileFor(profileName)
}

func profileFor(name string) profile.Profile {
	prof := profile.Get(name)
	if algoFlag != "" && algoFlag != prof.Algorithm {
		prof.Algorithm = algoFlag
		prof.Kernels = nil
	}
	if bitsFlag > 0 {
		prof.Bits = bitsFlag
	}
	return prof
}

// algorithm builds the algorithm selected by the global flags.
func algorithm() (profile.Profile, phash.Algorithm, error) {
	prof := resolveProfile()
	a, err := prof.Build()
	if err != nil {
		return prof, nil, err
	}
	logger.Debug("algorithm", "profile", prof.Name, "name", a.String(), "bits", a.KeyResolution())
	return prof, a, nil
}
