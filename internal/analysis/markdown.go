package analysis

import (
	"fmt"
	"strings"
)

func bullets(title string, lines []string) string {
	var b strings.Builder
	b.WriteString("[" + title + "]\n")
	for _, l := range lines {
		b.WriteString("- " + l + "\n")
	}
	return b.String()
}

// Markdown renders the findings, or the sentinel, as a bullet section.
func (r InconsistencyReport) Markdown() string { return bullets("INCONSISTENCIES", r.Lines()) }

// Markdown renders the findings, or a sentinel, as a bullet section.
func (r OutlierReport) Markdown() string { return bullets("OUTLIERS", r.Lines()) }

// Markdown renders the duplicate counts as a bullet section.
func (r DuplicateReport) Markdown() string {
	return bullets("DUPLICATES", []string{
		fmt.Sprintf("Duplicate rows: %d of %d (unique %d)", r.Count, r.Rows, r.Unique),
		fmt.Sprintf("Rows a deduplication pass would remove: %d", r.DropPreview),
	})
}

// Markdown renders per-column missing counts as a bullet section.
func (r MissingReport) Markdown() string {
	if r.Empty() {
		return bullets("MISSING VALUES", []string{NoMissing})
	}
	lines := make([]string, 0, len(r.Columns)+1)
	for _, c := range r.Columns {
		lines = append(lines, fmt.Sprintf("%s: %d (%.1f%%)", safeName(c.Column), c.Count, c.Percent))
	}
	lines = append(lines, fmt.Sprintf("Complete rows: %d, rows with missing: %d", r.CompleteRows, r.RowsWithMissing))
	return bullets("MISSING VALUES", lines)
}
