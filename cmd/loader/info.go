package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"locator/internal/infra/etl"
	"locator/internal/util"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	var detail bool

	cmd := &cobra.Command{
		Use:   "info [csv]",
		Short: "Summarize the location table",
		Long:  "Prints the database size, row counts and columns of the location table and compares the row count with the CSV.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			info, err := a.inspector.Info(ctx, detail)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Table\t%s\n", info.Table)
			if info.SizeBytes > 0 {
				fmt.Fprintf(w, "Database size\t%s\n", util.FormatBytes(info.SizeBytes))
			}
			fmt.Fprintf(w, "Rows\t%s\n", util.FormatCount(info.Rows))
			fmt.Fprintf(w, "Unique postcodes\t%s\n", util.FormatCount(info.UniquePostcodes))
			fmt.Fprintf(w, "Unique locations\t%s\n", util.FormatCount(info.UniqueLocations))

			location := csvArg(args)
			csvRows, err := etl.CountRows(ctx, location)
			if err != nil {
				a.logger.Warn("Skipping CSV comparison", slog.String("source", location), slog.Any("error", err))
			} else {
				status := "match"
				if csvRows != info.Rows {
					status = fmt.Sprintf("differs by %s", util.FormatCount(info.Rows-csvRows))
				}
				fmt.Fprintf(w, "CSV rows\t%s (%s)\n", util.FormatCount(csvRows), status)
			}

			fmt.Fprintln(w)
			if detail {
				fmt.Fprintln(w, "COLUMN\tTYPE\tKEY\tNULLABLE\tDISTINCT")
			} else {
				fmt.Fprintln(w, "COLUMN\tTYPE\tKEY\tNULLABLE")
			}
			for _, column := range info.Columns {
				key := ""
				if column.PrimaryKey {
					key = "PK"
				}
				if detail {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", column.Name, column.Type, key, column.Nullable,
						util.FormatCount(column.Distinct))

					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", column.Name, column.Type, key, column.Nullable)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&detail, "detail", false, "count distinct values per column")

	return cmd
}
