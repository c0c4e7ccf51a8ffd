package analysis

import (
	"fmt"

	pretty "github.com/jedib0t/go-pretty/v6/table"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

func newWriter(title string) pretty.Writer {
	w := pretty.NewWriter()
	w.SetStyle(pretty.StyleLight)
	if title != "" {
		w.SetTitle(title)
	}
	return w
}

// Text renders the profile as terminal tables.
func (r ProfileReport) Text() string {
	w := newWriter("Dataset summary")
	w.AppendHeader(pretty.Row{"Metric", "Value"})
	w.AppendRows([]pretty.Row{
		{"Source", r.Name},
		{"Rows", r.Rows},
		{"Columns", r.Columns},
		{"Missing values", r.Missing},
		{"Duplicate rows", r.Duplicates},
		{"Complete rows", r.CompleteRows},
		{"Rows with missing", r.RowsWithMissing},
		{"Estimated memory", fmt.Sprintf("%.2f MB", r.MemoryMB())},
	})
	out := w.Render() + "\n"

	types := newWriter("Column types")
	types.AppendHeader(pretty.Row{"Column", "DType", "Missing"})
	missing := map[string]int{}
	for _, m := range r.MissingByColumn {
		missing[m.Column] = m.Count
	}
	for _, ct := range r.DTypes {
		types.AppendRow(pretty.Row{ct.Column, ct.DType, missing[ct.Column]})
	}
	return out + types.Render() + "\n"
}

// Text renders the findings, or the sentinel, as a terminal table.
func (r InconsistencyReport) Text() string {
	if r.Empty() {
		return NoInconsistencies + "\n"
	}
	w := newWriter("Inconsistencies")
	w.AppendHeader(pretty.Row{"Column", "Rule", "Count"})
	for _, f := range r.Findings {
		w.AppendRow(pretty.Row{f.Column, string(f.Rule), f.Count})
	}
	return w.Render() + "\n"
}

// Text renders the findings, or a sentinel, as a terminal table.
func (r OutlierReport) Text() string {
	if r.Empty() {
		return r.Lines()[0] + "\n"
	}
	w := newWriter(fmt.Sprintf("Outliers (|Z|>%.0f)", ZThreshold))
	w.AppendHeader(pretty.Row{"Column", "Count", "Mean", "Std", "Max |Z|"})
	for _, f := range r.Findings {
		w.AppendRow(pretty.Row{f.Column, f.Count, fmt.Sprintf("%.4g", f.Mean), fmt.Sprintf("%.4g", f.Std), fmt.Sprintf("%.2f", f.MaxAbsZ)})
	}
	return w.Render() + "\n"
}

// Text renders the duplicate counts as a terminal table.
func (r DuplicateReport) Text() string {
	w := newWriter("Duplicates")
	w.AppendHeader(pretty.Row{"Metric", "Value"})
	w.AppendRows([]pretty.Row{
		{"Rows", r.Rows},
		{"Duplicate rows", r.Count},
		{"Unique rows", r.Unique},
		{"Removed by deduplication", r.DropPreview},
	})
	return w.Render() + "\n"
}

// Text renders per-column missing counts as a terminal table.
func (r MissingReport) Text() string {
	if r.Empty() {
		return NoMissing + "\n"
	}
	w := newWriter("Missing values by column")
	w.AppendHeader(pretty.Row{"Column", "Missing", "%"})
	for _, c := range r.Columns {
		w.AppendRow(pretty.Row{c.Column, c.Count, fmt.Sprintf("%.1f", c.Percent)})
	}
	w.AppendFooter(pretty.Row{"Total", r.Total, ""})
	out := w.Render() + "\n"
	return out + fmt.Sprintf("Complete rows: %d, rows with missing: %d\n", r.CompleteRows, r.RowsWithMissing)
}

// RowsText renders up to limit rows of t as a terminal table; limit <= 0
// renders every row.
func RowsText(t *table.Table, limit int) string {
	w := newWriter("")
	header := pretty.Row{}
	for _, n := range t.ColumnNames() {
		header = append(header, n)
	}
	w.AppendHeader(header)
	n := t.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		row := pretty.Row{}
		for _, v := range t.Row(i) {
			row = append(row, v)
		}
		w.AppendRow(row)
	}
	out := w.Render() + "\n"
	if n < t.NumRows() {
		out += fmt.Sprintf("... %d more rows\n", t.NumRows()-n)
	}
	return out
}
