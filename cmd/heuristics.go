package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/analysis"
	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// heuristicCmd builds a command that runs one column-filtered check.
func heuristicCmd(use, short, label string, run func(t *table.Table, search string) report) *cobra.Command {
	var (
		src    sourceFlags
		out    outputFlags
		search string
	)
	c := &cobra.Command{
		Use:   use + " <source>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := src.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			return out.write(cmd, label, run(s.Active(), search))
		},
	}
	src.bind(c)
	out.bind(c)
	c.Flags().StringVar(&search, "search", "", "only check columns whose name contains this term (case-insensitive; no match checks all)")
	return c
}

func init() {
	rootCmd.AddCommand(
		heuristicCmd("inconsistencies", "Report numeric mismatches, bad emails, bad phones and unparseable dates", "inconsistencies",
			func(t *table.Table, search string) report { return analysis.FindInconsistencies(t, search) }),
		heuristicCmd("outliers", "Report numeric values more than 3 standard deviations from the mean", "outliers",
			func(t *table.Table, search string) report { return analysis.FindOutliers(t, search) }),
		heuristicCmd("missing", "Report missing values per column", "missing values",
			func(t *table.Table, search string) report { return analysis.FindMissing(t, search) }),
	)
}
