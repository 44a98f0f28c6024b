package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format IN OUT",
		Short: "Re-encode an index with a fresh Last-Updated and Line-Count",
		Long:  "Decode IN and write it to OUT in canonical form. OUT may be \"-\" for stdout; a .gz OUT is compressed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args[0], args[1], time.Now)
		},
	}
}

func runFormat(cmd *cobra.Command, in, out string, now func() time.Time) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	res, err := loadIndex(in, cfg, logger)
	if err != nil {
		return err
	}
	// rewriting would silently drop the rejected lines
	if err := res.Err(); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	idx := res.Index
	idx.Set(index.FieldLastUpdated, now().UTC().Format(index.LastUpdatedLayout))

	if err := writeIndex(cmd.OutOrStdout(), out, idx, cfg.LockTimeout); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s with %d packages\n", out, len(idx.UniqueSorted()))
	}
	return nil
}
