// Package analysis computes profiles and data-quality findings over tables.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// ProfileReport summarizes a table without modifying it.
type ProfileReport struct {
	Name            string         `json:"name" yaml:"name"`
	Rows            int            `json:"rows" yaml:"rows"`
	Columns         int            `json:"columns" yaml:"columns"`
	Missing         int            `json:"missing" yaml:"missing"`
	Duplicates      int            `json:"duplicates" yaml:"duplicates"`
	DTypes          []ColumnType   `json:"dtypes" yaml:"dtypes"`
	DTypeCounts     map[string]int `json:"dtype_counts" yaml:"dtype_counts"`
	MissingByColumn []ColumnCount  `json:"missing_by_column" yaml:"missing_by_column"`
	CompleteRows    int            `json:"complete_rows" yaml:"complete_rows"`
	RowsWithMissing int            `json:"rows_with_missing" yaml:"rows_with_missing"`
	// MemoryBytes is table.MemoryBytes: an estimate in bytes.
	MemoryBytes int64 `json:"memory_bytes" yaml:"memory_bytes"`
}

// ColumnType pairs a column with its dtype label.
type ColumnType struct {
	Column string `json:"column" yaml:"column"`
	DType  string `json:"dtype" yaml:"dtype"`
}

// ColumnCount is a per-column count with its share of the row count.
type ColumnCount struct {
	Column  string  `json:"column" yaml:"column"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Profile computes aggregate statistics over t. An empty table yields zero counts.
func Profile(t *table.Table) ProfileReport {
	r := ProfileReport{
		Name:        t.Name,
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		Missing:     t.MissingCount(),
		Duplicates:  countDuplicates(t),
		DTypeCounts: map[string]int{},
		MemoryBytes: t.MemoryBytes(),
	}
	for _, c := range t.Columns {
		label := c.Kind.String()
		r.DTypes = append(r.DTypes, ColumnType{Column: c.Name, DType: label})
		r.DTypeCounts[label]++
	}
	r.MissingByColumn = missingCounts(t.Columns, r.Rows, true)
	r.CompleteRows, r.RowsWithMissing = rowCompleteness(t)
	return r
}

// MemoryMB reports the memory estimate in MiB.
func (r ProfileReport) MemoryMB() float64 {
	return float64(r.MemoryBytes) / 1024 / 1024
}

// missingCounts returns per-column missing counts sorted by count, descending,
// keeping input order among ties. nonZero drops columns without missing cells.
func missingCounts(cols []*table.Column, rows int, nonZero bool) []ColumnCount {
	out := make([]ColumnCount, 0, len(cols))
	for _, c := range cols {
		n := c.MissingCount()
		if nonZero && n == 0 {
			continue
		}
		out = append(out, ColumnCount{Column: c.Name, Count: n, Percent: percent(n, rows)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func rowCompleteness(t *table.Table) (complete, withMissing int) {
	for i := 0; i < t.NumRows(); i++ {
		hasMissing := false
		for _, c := range t.Columns {
			if !c.Cells[i].Valid {
				hasMissing = true
				break
			}
		}
		if hasMissing {
			withMissing++
		} else {
			complete++
		}
	}
	return complete, withMissing
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// Markdown renders the profile in the plain [SECTION] report layout.
func (r ProfileReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Columns))
	b.WriteString(fmt.Sprintf("Missing values: %d\n", r.Missing))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", r.Duplicates))
	b.WriteString(fmt.Sprintf("Complete rows: %d (with missing: %d)\n", r.CompleteRows, r.RowsWithMissing))
	b.WriteString(fmt.Sprintf("Estimated memory: %.2f MB\n\n", r.MemoryMB()))

	b.WriteString("[SCHEMA]\n")
	for _, ct := range r.DTypes {
		b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(ct.Column), ct.DType))
	}
	if len(r.DTypeCounts) > 0 {
		labels := make([]string, 0, len(r.DTypeCounts))
		for k := range r.DTypeCounts {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		b.WriteString("\n[DTYPES]\n")
		for _, l := range labels {
			b.WriteString(fmt.Sprintf("- %s: %d\n", l, r.DTypeCounts[l]))
		}
	}
	b.WriteString("\n[MISSING BY COLUMN]\n")
	if len(r.MissingByColumn) == 0 {
		b.WriteString("No missing values detected.\n")
	}
	for _, m := range r.MissingByColumn {
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeName(m.Column), m.Count, m.Percent))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
