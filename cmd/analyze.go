package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/analysis"
	"github.com/KaramelBytes/datascrub-cli/internal/session"
)

var (
	anaSource     sourceFlags
	anaOutput     outputFlags
	anaSearch     string
	anaSampleRows int
	anaBins       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source>",
	Short: "Run every check and produce a combined Markdown report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := anaSource.openSession(cmd, args[0])
		if err != nil {
			return err
		}
		rep := analyzeSession(s, analyzeOptions(cmd, anaSearch, anaSampleRows, anaBins))
		return anaOutput.write(cmd, "analysis", markdownOnly{value: rep, md: rep.Markdown})
	},
}

func analyzeOptions(cmd *cobra.Command, search string, sampleRows, bins int) analysis.Options {
	opt := analysis.DefaultOptions()
	opt.Search = search
	opt.SampleRows = conf().SampleRows
	if cmd.Flags().Changed("sample-rows") {
		opt.SampleRows = sampleRows
	}
	if bins > 0 {
		opt.HistogramBins = bins
	}
	return opt
}

func analyzeSession(s *session.Session, opt analysis.Options) *analysis.Report {
	rep := analysis.Analyze(s.Active(), opt)
	rep.Warnings = append(rep.Warnings, s.Warnings...)
	return rep
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaSource.bind(analyzeCmd)
	anaOutput.bind(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaSearch, "search", "", "restrict the column checks to names containing this term")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (default from config, 0 disables)")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 30, "histogram bins for the first numeric column")
}
