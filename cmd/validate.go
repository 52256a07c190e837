package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imghash/internal/catalog"
	"github.com/AnyUserName/imghash/internal/phash"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog_path>",
	Short: "Validate a hash catalog's structure and hash encoding",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errs := validateCatalog(c)
	if len(errs) == 0 {
		fmt.Fprintln(out, "  ok  catalog is valid")
		fmt.Fprintf(out, "  ok  %d entries, %d-bit hashes from %s\n", len(c.Entries), c.Algorithm.Bits, c.Algorithm.Name)
		return nil
	}

	fmt.Fprintf(out, "  catalog has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "    - %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateCatalog(c *catalog.Catalog) []string {
	var errs []string

	// Check version.
	if c.Version != catalog.SupportedCatalogVersion {
		errs = append(errs, fmt.Sprintf("unsupported catalog version: %d", c.Version))
	}

	// Check algorithm.
	id, err := c.AlgorithmID()
	if err != nil {
		errs = append(errs, err.Error())
	}
	if c.Algorithm.Bits <= 0 {
		errs = append(errs, fmt.Sprintf("invalid bit length %d", c.Algorithm.Bits))
	}
	if c.Algorithm.Name == "" {
		errs = append(errs, "missing algorithm name")
	}
	wantDigits := (c.Algorithm.Bits + 3) / 4

	keys := make([]string, 0, len(c.Entries))
	for key := range c.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Check each entry.
	for _, key := range keys {
		e := c.Entries[key]
		if e.Width <= 0 || e.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid dimensions %dx%d", key, e.Width, e.Height))
		}
		if e.Format == "" {
			errs = append(errs, fmt.Sprintf("entry %q: empty format", key))
		}
		if len(e.Digest) != 16 {
			errs = append(errs, fmt.Sprintf("entry %q: malformed digest %q", key, e.Digest))
		}
		if len(e.Hash) != wantDigits || strings.ToLower(e.Hash) != e.Hash {
			errs = append(errs, fmt.Sprintf("entry %q: hash %q is not %d lowercase hex digits", key, e.Hash, wantDigits))
			continue
		}
		if c.Algorithm.Bits > 0 && err == nil {
			if _, perr := phash.ParseHex(e.Hash, c.Algorithm.Bits, id); perr != nil {
				errs = append(errs, fmt.Sprintf("entry %q: %v", key, perr))
			}
		}
	}

	// Verify stats consistency.
	fresh := *c
	fresh.ComputeStats()
	if c.Stats.TotalEntries != fresh.Stats.TotalEntries {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", c.Stats.TotalEntries, fresh.Stats.TotalEntries))
	}
	if c.Stats.TotalInputBytes != fresh.Stats.TotalInputBytes {
		errs = append(errs, fmt.Sprintf("stats.total_input_bytes mismatch: %d != %d", c.Stats.TotalInputBytes, fresh.Stats.TotalInputBytes))
	}

	return errs
}
