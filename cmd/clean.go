package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/clean"
	"github.com/KaramelBytes/datascrub-cli/internal/export"
)

var (
	clnSource   sourceFlags
	clnOutput   string
	clnEncoding string
	clnHandoff  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <source>",
	Short: "Normalize a table and export it to CSV or Parquet",
	Long: `Normalize blank tokens and whitespace, coerce mostly-numeric columns to numbers
and date-named columns to datetimes, drop exact duplicate rows and export the result.
The output format follows the extension of --output (.csv or .parquet).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if clnOutput == "" && !clnHandoff {
			return fmt.Errorf("nothing to write: pass --output or --handoff")
		}
		encoding := clnEncoding
		if encoding == "" {
			encoding = conf().ExportEncoding
		}
		if _, err := export.ParseEncoding(encoding); err != nil {
			return err
		}

		s, err := clnSource.openSession(cmd, args[0])
		if err != nil {
			return err
		}
		st := s.Clean()
		printStats(cmd.OutOrStdout(), st)

		out := cmd.OutOrStdout()
		if clnOutput != "" {
			switch strings.ToLower(filepath.Ext(clnOutput)) {
			case ".parquet", ".pq":
				if err := export.ParquetFile(clnOutput, s.Cleaned); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Wrote %d rows to %s\n", s.Cleaned.NumRows(), clnOutput)
			default:
				enc, err := export.CSVFile(clnOutput, s.Cleaned, export.CSVOptions{Encoding: encoding})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Wrote %d rows to %s (%s)\n", s.Cleaned.NumRows(), clnOutput, enc)
			}
		}
		if clnHandoff {
			path, err := s.Handoff(conf().HandoffDir, export.CSVOptions{Encoding: encoding})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Session %s handed off to %s\n", s.ID, path)
		}
		return nil
	},
}

func printStats(w io.Writer, st clean.Stats) {
	fmt.Fprintf(w, "Rows: %d in, %d out\n", st.RowsIn, st.RowsOut)
	fmt.Fprintf(w, "Blank tokens cleared: %d\n", st.BlankTokens)
	fmt.Fprintf(w, "Cells blank after trimming: %d\n", st.TrimmedToBlank)
	fmt.Fprintf(w, "Numeric columns: %s (unparseable cells dropped: %d)\n", listOrNone(st.NumericColumns), st.NumericDropped)
	fmt.Fprintf(w, "Date columns: %s (unparseable cells dropped: %d)\n", listOrNone(st.DateColumns), st.DateDropped)
	fmt.Fprintf(w, "Duplicate rows removed: %d\n", st.DuplicatesFound)
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	clnSource.bind(cleanCmd)
	cleanCmd.Flags().StringVarP(&clnOutput, "output", "o", "", "output file (.csv or .parquet)")
	cleanCmd.Flags().StringVar(&clnEncoding, "encoding", "", "CSV encoding: auto|utf-8|latin-1 (default from config)")
	cleanCmd.Flags().BoolVar(&clnHandoff, "handoff", false, "also write the cleaned table to the handoff directory for a later session")
}
