package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frederic-klein/pkgdetails/internal/codec"
	"github.com/frederic-klein/pkgdetails/internal/config"
	"github.com/frederic-klein/pkgdetails/internal/index"
	"github.com/frederic-klein/pkgdetails/internal/source"
)

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	cobra.OnInitialize(func() { initConfig(rootCmd) })

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pkgdetails",
		Short:         "Read, write and validate CPAN 02packages.details.txt indexes",
		Long:          "pkgdetails builds and checks the package index a CPAN mirror publishes under modules/02packages.details.txt.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().String("config", "", "config file (default .pkgdetails.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(
		newCheckCmd(),
		newFormatCmd(),
		newListCmd(),
		newReduceCmd(),
		newFetchCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func initConfig(rootCmd *cobra.Command) {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".pkgdetails")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PKGDETAILS")
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// setup loads the configuration and builds the logger every command shares.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// loadIndex opens and decodes the index at path.
func loadIndex(path string, cfg config.Config, logger *slog.Logger) (*codec.Result, error) {
	r, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res, err := codec.Decode(r,
		codec.WithLogger(logger),
		codec.WithIndexOptions(cfg.IndexOptions(time.Now)),
	)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Debug("loaded index", "path", path, "packages", len(res.Index.UniqueSorted()), "warnings", len(res.Warnings))
	return res, nil
}

// writeIndex encodes idx to path, or to w when path is "-".
func writeIndex(w io.Writer, path string, idx *index.PackageIndex, lockTimeout time.Duration) error {
	if path == "-" {
		return codec.Encode(w, idx)
	}

	out, err := source.Create(path, lockTimeout)
	if err != nil {
		return err
	}
	if err := codec.Encode(out, idx); err != nil {
		_ = out.Abort()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
