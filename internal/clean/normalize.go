// Package clean implements the table normalization pipeline.
package clean

import (
	"log/slog"
	"strings"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// Stats describes what each normalization step changed.
type Stats struct {
	BlankTokens     int      // cells turned Missing by step 1
	TrimmedToBlank  int      // cells turned Missing by step 2
	NumericColumns  []string // columns coerced by step 3
	NumericDropped  int      // unparseable cells dropped by step 3
	DateColumns     []string // columns coerced by step 4
	DateDropped     int      // unparseable cells dropped by step 4
	DuplicatesFound int      // rows removed by step 5
	RowsIn, RowsOut int
	Passes          int
}

// Normalize returns a cleaned copy of t. The input is never modified.
func Normalize(t *table.Table) *table.Table {
	out, _ := NormalizeWithStats(t, nil)
	return out
}

// NormalizeWithStats runs the five cleaning steps in order and reports their
// effect. Removing duplicates can shift a column's parse fraction, so the
// pass is repeated until it changes nothing; the result is therefore a fixed
// point and normalizing it again is a no-op. A nil logger falls back to
// slog.Default().
func NormalizeWithStats(t *table.Table, logger *slog.Logger) (*table.Table, Stats) {
	if logger == nil {
		logger = slog.Default()
	}
	st := Stats{RowsIn: t.NumRows()}
	out := t.Clone()
	if t.NumRows() == 0 {
		return out, st
	}
	for {
		st.Passes++
		changed := normalizePass(out, &st)
		deduped := Dedup(out)
		removed := out.NumRows() - deduped.NumRows()
		st.DuplicatesFound += removed
		out = deduped
		if !changed && removed == 0 {
			break
		}
	}
	st.RowsOut = out.NumRows()
	logger.Debug("normalized table",
		"table", t.Name,
		"passes", st.Passes,
		"rows_in", st.RowsIn,
		"rows_out", st.RowsOut,
		"blank_tokens", st.BlankTokens,
		"numeric_columns", len(st.NumericColumns),
		"date_columns", len(st.DateColumns))
	return out, st
}

// normalizePass applies steps 1 to 4 in place and reports whether any cell changed.
func normalizePass(t *table.Table, st *Stats) bool {
	changed := false
	for _, c := range t.Columns {
		if c.Kind != table.KindText {
			continue
		}
		blanks := canonicalizeBlanks(c)
		trimmed, touched := trimCells(c)
		st.BlankTokens += blanks
		st.TrimmedToBlank += trimmed
		if blanks > 0 || trimmed > 0 || touched {
			changed = true
		}
	}
	for _, c := range t.Columns {
		if dropped, ok := coerceNumeric(c); ok {
			st.NumericColumns = append(st.NumericColumns, c.Name)
			st.NumericDropped += dropped
			changed = true
		}
	}
	for _, c := range t.Columns {
		if !IsDateColumn(c.Name) {
			continue
		}
		if dropped, ok := coerceDates(c); ok {
			st.DateColumns = append(st.DateColumns, c.Name)
			st.DateDropped += dropped
			changed = true
		}
	}
	return changed
}

func canonicalizeBlanks(c *table.Column) int {
	n := 0
	for i, v := range c.Cells {
		if v.Valid && IsBlankToken(v.Str) {
			c.Cells[i] = table.Missing()
			n++
		}
	}
	return n
}

// trimCells strips whitespace; blank or "nan" results become Missing.
func trimCells(c *table.Column) (blanked int, touched bool) {
	for i, v := range c.Cells {
		if !v.Valid {
			continue
		}
		s := strings.TrimSpace(v.Str)
		if s == "" || s == "nan" {
			c.Cells[i] = table.Missing()
			blanked++
			continue
		}
		if s != v.Str {
			c.Cells[i] = table.Text(s)
			touched = true
		}
	}
	return blanked, touched
}

// coerceNumeric converts a text column in place when enough cells parse.
func coerceNumeric(c *table.Column) (dropped int, coerced bool) {
	ok, total := NumericFraction(c)
	if !MeetsThreshold(ok, total, NumericThreshold) {
		return 0, false
	}
	for i, v := range c.Cells {
		if !v.Valid {
			continue
		}
		if f, parsed := ParseNumber(v.Str); parsed {
			c.Cells[i] = table.Number(f)
		} else {
			c.Cells[i] = table.Missing()
			dropped++
		}
	}
	c.Kind = table.KindNumber
	return dropped, true
}

// coerceDates converts a date-named text column in place when enough cells parse.
// Columns of any other kind are left alone.
func coerceDates(c *table.Column) (dropped int, coerced bool) {
	if c.Kind != table.KindText {
		return 0, false
	}
	ok, total := DateFraction(c)
	if !MeetsThreshold(ok, total, DateThreshold) {
		return 0, false
	}
	for i, v := range c.Cells {
		if !v.Valid {
			continue
		}
		if ts, parsed := ParseDate(v.Str); parsed {
			c.Cells[i] = table.Timestamp(ts)
		} else {
			c.Cells[i] = table.Missing()
			dropped++
		}
	}
	c.Kind = table.KindTime
	return dropped, true
}

// Dedup drops rows identical to an earlier row, keeping the first occurrence
// in the original order. The result shares no storage with t.
func Dedup(t *table.Table) *table.Table {
	keep := make([]int, 0, t.NumRows())
	seen := make(map[string]struct{}, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		k := t.RowKey(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return t.SelectRows(keep)
}
