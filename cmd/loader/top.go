package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"locator/internal/errors"
	"locator/internal/util"

	"github.com/spf13/cobra"
)

// barWidth is the length of the longest bar in a top report.
const barWidth = 40

func newTopCmd(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top COLUMN",
		Short: "Show the most frequent values of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return errors.Errorf("-n must be positive, got %d", n)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			counts, err := a.inspector.Top(ctx, args[0], n)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tCOUNT\t\n", strings.ToUpper(args[0]))

			var peak int64
			for _, count := range counts {
				peak = max(peak, count.Count)
			}
			for _, count := range counts {
				value := count.Value
				if value == "" {
					value = "(empty)"
				}
				bar := 0
				if peak > 0 {
					bar = int(count.Count * barWidth / peak)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", value, util.FormatCount(count.Count), strings.Repeat("#", max(bar, 1)))
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 30, "number of values to show")

	return cmd
}
