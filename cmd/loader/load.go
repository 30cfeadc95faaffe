package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"locator/internal/infra/etl"
	"locator/internal/util"

	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "load [csv]",
		Short: "Load the postcode CSV into the location table",
		Long: "Streams a CSV from a local path or a file://, gs:// or s3:// URL into the configured table, " +
			"then builds the postcode, town and county indexes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			location := csvArg(args)
			rc, err := etl.OpenSource(ctx, location)
			if err != nil {
				return err
			}
			defer rc.Close()

			a.logger.Info("Loading locations",
				slog.String("source", location),
				slog.String("table", a.cfg.Store.Table),
				slog.Bool("create", create),
			)

			source := util.NewChecksumReader(rc)
			report, err := a.loader.Load(ctx, source, etl.LoadOptions{Create: create})
			if err != nil {
				return err
			}

			csvRows, err := etl.CountRows(ctx, location)
			if err != nil {
				return err
			}
			if csvRows != report.Loaded {
				a.logger.Warn("Loaded row count differs from CSV row count",
					slog.Int64("csv_rows", csvRows),
					slog.Int64("loaded", report.Loaded),
				)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Source\t%s (%s)\n", location, util.FormatBytes(source.BytesRead()))
			fmt.Fprintf(w, "SHA256\t%s\n", source.Sum())
			fmt.Fprintf(w, "Columns\t%s\n", strings.Join(report.Columns, ", "))
			fmt.Fprintf(w, "CSV rows\t%s\n", util.FormatCount(csvRows))
			fmt.Fprintf(w, "Loaded rows\t%s\n", util.FormatCount(report.Loaded))
			fmt.Fprintf(w, "Invalid coordinates\t%s\n", util.FormatCount(report.InvalidCoordinates))
			fmt.Fprintf(w, "Table rows\t%s\n", util.FormatCount(report.TableRows))
			fmt.Fprintf(w, "Indexes\t%s\n", strings.Join(report.Indexes, ", "))
			fmt.Fprintf(w, "Geography column\t%t\n", report.Spatial)
			fmt.Fprintf(w, "Elapsed\t%s (%s)\n", util.FormatDuration(report.Elapsed),
				util.FormatRate(report.Loaded, report.Elapsed, "rows"))

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "drop and recreate the table before loading")

	return cmd
}
