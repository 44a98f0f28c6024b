package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/pkgdetails/internal/corpus"
	"github.com/frederic-klein/pkgdetails/internal/reconcile"
)

func newReduceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reduce DIR",
		Short: "Print the newest archive of every distribution under DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			paths, err := corpus.NewLister(cfg.Workers).List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("listing corpus: %w", err)
			}
			reduced := reconcile.Reduce(paths)
			logger.Debug("reduced corpus", "archives", len(paths), "newest", len(reduced))

			out := cmd.OutOrStdout()
			for _, p := range reduced {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
