package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frederic-klein/pkgdetails/internal/corpus"
	"github.com/frederic-klein/pkgdetails/internal/reconcile"
)

func newCheckCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate an index against its header and an archive corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}
			return runCheck(cmd, args[0], format)
		},
	}

	cmd.Flags().String("corpus", "", "corpus root to check archives against, usually $CPAN/authors/id")
	cmd.Flags().StringVar(&format, "format", "text", "report format: text or yaml")
	_ = viper.BindPFlag("corpus_root", cmd.Flags().Lookup("corpus"))
	return cmd
}

func runCheck(cmd *cobra.Command, path, format string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	res, err := loadIndex(path, cfg, logger)
	if err != nil {
		return err
	}

	var corp *reconcile.Corpus
	if cfg.CorpusRoot != "" {
		paths, err := corpus.NewLister(cfg.Workers).List(cmd.Context(), cfg.CorpusRoot)
		if err != nil {
			return fmt.Errorf("listing corpus: %w", err)
		}
		corp = &reconcile.Corpus{Root: cfg.CorpusRoot, Paths: paths}
	}

	report := reconcile.New(reconcile.WithLogger(logger)).Run(res.Index, corp)

	out := cmd.OutOrStdout()
	if format == "yaml" {
		data, err := report.YAML()
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else {
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "warning: %v\n", w)
		}
		for _, e := range res.Rejected {
			fmt.Fprintf(out, "rejected: %v\n", e)
		}
		fmt.Fprintf(out, "%s: %d packages, Line-Count %d\n", path, report.RecordCount, report.HeaderCount)
		if corp != nil {
			fmt.Fprintf(out, "corpus: %d archives under %s\n", report.CorpusSize, corp.Root)
		}
		for _, p := range report.Unparsable {
			fmt.Fprintf(out, "skipped: %s\n", p)
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		if report.OK() && len(res.Rejected) == 0 {
			fmt.Fprintln(out, "ok")
		}
	}

	if !report.OK() {
		return fmt.Errorf("%s: %d check(s) failed", path, len(report.Errors))
	}
	if len(res.Rejected) > 0 {
		return fmt.Errorf("%s: %d record(s) rejected", path, len(res.Rejected))
	}
	return nil
}
