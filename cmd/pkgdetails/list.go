package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

func newListCmd() *cobra.Command {
	var pkg, distName string

	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "Print the records of an index",
		Long:  "Print the newest record of every package, or every version of one package (--package) or the packages of one distribution (--dist).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pkg != "" && distName != "" {
				return errors.New("--package and --dist are mutually exclusive")
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			res, err := loadIndex(args[0], cfg, logger)
			if err != nil {
				return err
			}

			idx := res.Index
			var records []index.Record
			switch {
			case pkg != "":
				records = idx.ByPackage(pkg)
				if len(records) == 0 {
					return fmt.Errorf("package %s not found", pkg)
				}
			case distName != "":
				records = idx.ByDistribution(distName)
				if len(records) == 0 {
					return fmt.Errorf("distribution %s not found", distName)
				}
			default:
				records = idx.UniqueSorted()
			}

			out := cmd.OutOrStdout()
			columns := idx.Columns()
			for _, rec := range records {
				fmt.Fprintln(out, idx.Store().Line(rec, columns))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "list every stored version of a package")
	cmd.Flags().StringVarP(&distName, "dist", "d", "", "list the packages of a distribution")
	return cmd
}
