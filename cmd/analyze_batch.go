package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

var (
	abSource     sourceFlags
	abOutDir     string
	abSearch     string
	abSampleRows int
	abBins       int
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze many files with progress, writing one Markdown report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		out := cmd.OutOrStdout()
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		opt := analyzeOptions(cmd, abSearch, abSampleRows, abBins)

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			s, err := abSource.openSession(cmd, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			md := analyzeSession(s, opt).Markdown()

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile := reportPath(abOutDir, path, abSource.sheetName)
			if _, statErr := os.Stat(outFile); statErr == nil {
				cand := nextFreePath(outFile)
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
				}
				outFile = cand
			}
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote analysis to %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// repeats. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// reportPath names the summary for path: an ASCII slug of the base name,
// plus the sheet when one was selected.
func reportPath(dir, path, sheet string) string {
	base := filepath.Base(path)
	name := utils.Slug(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "dataset"
	}
	if sheet != "" {
		ss := utils.Slug(sheet)
		if ss == "" {
			ss = "sheet"
		}
		name += "__sheet-" + ss
	}
	return filepath.Join(dir, name+".summary.md")
}

// nextFreePath appends __2, __3, ... before the .summary.md suffix until the
// name is unused.
func nextFreePath(p string) string {
	stem := strings.TrimSuffix(p, ".summary.md")
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d.summary.md", stem, idx)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abSource.bind(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for <name>.summary.md reports (default: print to stdout)")
	analyzeBatchCmd.Flags().StringVar(&abSearch, "search", "", "restrict the column checks to names containing this term")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (default from config, 0 disables)")
	analyzeBatchCmd.Flags().IntVar(&abBins, "bins", 30, "histogram bins for the first numeric column")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
