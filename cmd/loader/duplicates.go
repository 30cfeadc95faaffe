package main

import (
	"fmt"
	"text/tabwriter"

	"locator/internal/util"

	"github.com/spf13/cobra"
)

func newDuplicatesCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List postcodes carried by more than one row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			groups, err := a.inspector.Duplicates(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if len(groups) == 0 {
				fmt.Fprintln(w, "No duplicate postcodes")

				return w.Flush()
			}

			for _, group := range groups {
				fmt.Fprintf(w, "%s\t%s rows\n", group.Postcode, util.FormatCount(group.Count))
				for _, row := range group.Rows {
					fmt.Fprintf(w, "\t%s\t%s\t%s\n", row.Town, row.Street1, row.County)
				}
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of duplicate postcodes to show")

	return cmd
}
