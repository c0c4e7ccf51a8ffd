package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/analysis"
	"github.com/KaramelBytes/datascrub-cli/internal/clean"
	"github.com/KaramelBytes/datascrub-cli/internal/export"
)

var (
	dupSource sourceFlags
	dupOutput outputFlags
	dupShow   bool
	dupExport string
	dupLimit  int
)

// duplicatesReport adds the duplicated rows to the text forms of the counts.
type duplicatesReport struct {
	analysis.DuplicateReport `yaml:",inline"`
	rows                     string
}

func (r duplicatesReport) Text() string { return r.DuplicateReport.Text() + r.rows }
func (r duplicatesReport) Markdown() string {
	if r.rows == "" {
		return r.DuplicateReport.Markdown()
	}
	return r.DuplicateReport.Markdown() + "\n```\n" + strings.TrimRight(r.rows, "\n") + "\n```\n"
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates <source>",
	Short: "Count exact duplicate rows and optionally export the deduplicated table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := dupSource.openSession(cmd, args[0])
		if err != nil {
			return err
		}
		t := s.Active()
		rep := duplicatesReport{DuplicateReport: analysis.AnalyzeDuplicates(t)}
		if dupShow && rep.Count > 0 {
			rep.rows = analysis.RowsText(analysis.DuplicateRows(t), dupLimit)
		}
		if err := dupOutput.write(cmd, "duplicates report", rep); err != nil {
			return err
		}
		if dupExport == "" {
			return nil
		}
		deduped := clean.Dedup(t)
		enc, err := export.CSVFile(dupExport, deduped, export.CSVOptions{Encoding: conf().ExportEncoding})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d deduplicated rows to %s (%s)\n", deduped.NumRows(), dupExport, enc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	dupSource.bind(duplicatesCmd)
	dupOutput.bind(duplicatesCmd)
	duplicatesCmd.Flags().BoolVar(&dupShow, "show", false, "list every row that has an identical copy")
	duplicatesCmd.Flags().IntVar(&dupLimit, "show-limit", 50, "maximum duplicated rows to list (0 = all)")
	duplicatesCmd.Flags().StringVar(&dupExport, "export", "", "write the table without duplicates to this CSV file")
}
