package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frederic-klein/pkgdetails/internal/index"
	"github.com/frederic-klein/pkgdetails/internal/source"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the package index of a CPAN mirror into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			f := source.NewFetcher(cfg.Mirror, cfg.CacheDir, cfg.CacheTTL)
			logger.Info("fetching index", "mirror", f.Mirror(), "cache", f.CachePath())
			path, err := f.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching index: %w", err)
			}

			res, err := loadIndex(path, cfg, logger)
			if err != nil {
				return err
			}
			updated, _ := res.Index.Get(index.FieldLastUpdated)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d packages, last updated %s\n",
				path, len(res.Index.UniqueSorted()), updated)
			return nil
		},
	}

	cmd.Flags().StringP("mirror", "m", "", "CPAN mirror URL")
	cmd.Flags().String("cache-dir", "", "index cache directory")
	_ = viper.BindPFlag("mirror", cmd.Flags().Lookup("mirror"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	return cmd
}
