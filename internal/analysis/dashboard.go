package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

// Options controls the combined report.
type Options struct {
	// Search restricts the column-filtered analyzers; empty means all columns.
	Search string
	// SampleRows is how many leading rows to include; 0 disables samples.
	SampleRows int
	// HistogramBins is the bin count for the numeric histogram.
	HistogramBins int
}

// DefaultOptions returns the defaults used by the analyze command.
func DefaultOptions() Options {
	return Options{SampleRows: 5, HistogramBins: 30}
}

// Report bundles every analysis of one table.
type Report struct {
	Profile         ProfileReport       `json:"profile" yaml:"profile"`
	Inconsistencies InconsistencyReport `json:"inconsistencies" yaml:"inconsistencies"`
	Outliers        OutlierReport       `json:"outliers" yaml:"outliers"`
	Duplicates      DuplicateReport     `json:"duplicates" yaml:"duplicates"`
	Missing         MissingReport       `json:"missing" yaml:"missing"`
	Histogram       *Histogram          `json:"histogram,omitempty" yaml:"histogram,omitempty"`
	Header          []string            `json:"header" yaml:"header"`
	Samples         [][]string          `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings        []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Analyze runs the profiler and every heuristic over t.
func Analyze(t *table.Table, opt Options) *Report {
	r := &Report{
		Profile:         Profile(t),
		Inconsistencies: FindInconsistencies(t, opt.Search),
		Outliers:        FindOutliers(t, opt.Search),
		Duplicates:      AnalyzeDuplicates(t),
		Missing:         FindMissing(t, opt.Search),
		Header:          t.ColumnNames(),
	}
	if h, ok := FirstNumericHistogram(t, opt.HistogramBins); ok {
		r.Histogram = &h
	}
	if opt.SampleRows > 0 {
		head := t.Head(opt.SampleRows)
		for i := 0; i < head.NumRows(); i++ {
			r.Samples = append(r.Samples, head.Row(i))
		}
	}
	return r
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString(r.Profile.Markdown())

	b.WriteString("\n")
	b.WriteString(r.Inconsistencies.Markdown())
	b.WriteString("\n")
	b.WriteString(r.Outliers.Markdown())
	b.WriteString("\n")
	b.WriteString(r.Duplicates.Markdown())

	if len(r.Missing.Top) > 0 {
		b.WriteString("\n[TOP MISSING]\n")
		for _, m := range r.Missing.Top {
			b.WriteString(fmt.Sprintf("- %s: %.1f%%\n", safeName(m.Column), m.Percent))
		}
	}

	if r.Histogram != nil {
		b.WriteString(fmt.Sprintf("\n[HISTOGRAM: %s]\n", safeName(r.Histogram.Column)))
		for _, bin := range r.Histogram.Bins {
			if bin.Count == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("- [%.4g, %.4g): %d\n", bin.Lo, bin.Hi, bin.Count))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Header {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				b.WriteString(safeVal(utils.Truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
