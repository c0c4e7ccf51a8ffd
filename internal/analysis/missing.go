package analysis

import (
	"math"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// NoMissing is reported when the selected columns hold no Missing cell.
const NoMissing = "No missing values."

// MissingReport profiles absent values over the columns selected by a search term.
type MissingReport struct {
	Total int `json:"total" yaml:"total"`
	// Columns holds every selected column, most missing first.
	Columns []ColumnCount `json:"columns" yaml:"columns"`
	// Top holds up to ten columns with missing cells, by missing share.
	Top             []ColumnCount `json:"top" yaml:"top"`
	CompleteRows    int           `json:"complete_rows" yaml:"complete_rows"`
	RowsWithMissing int           `json:"rows_with_missing" yaml:"rows_with_missing"`
}

// Empty reports whether nothing is missing.
func (r MissingReport) Empty() bool { return r.Total == 0 }

// FindMissing counts Missing cells per column selected by term.
func FindMissing(t *table.Table, term string) MissingReport {
	cols := FilterColumns(t.Columns, term)
	r := MissingReport{Columns: missingCounts(cols, t.NumRows(), false)}
	for _, c := range r.Columns {
		r.Total += c.Count
	}
	top := missingCounts(t.Columns, t.NumRows(), true)
	if len(top) > 10 {
		top = top[:10]
	}
	r.Top = top
	r.CompleteRows, r.RowsWithMissing = rowCompleteness(t)
	return r
}

// Bin is one histogram bucket covering [Lo, Hi), the last one closed.
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram holds equal-width bins over one numeric column.
type Histogram struct {
	Column string `json:"column" yaml:"column"`
	Bins   []Bin  `json:"bins" yaml:"bins"`
}

// FirstNumericHistogram bins the first numeric column of t. It returns false
// when t has no numeric column with values.
func FirstNumericHistogram(t *table.Table, bins int) (Histogram, bool) {
	for _, c := range t.Columns {
		if c.Kind != table.KindNumber {
			continue
		}
		vals := numericValues(c)
		if len(vals) == 0 {
			return Histogram{}, false
		}
		return Histogram{Column: c.Name, Bins: binValues(vals, bins)}, true
	}
	return Histogram{}, false
}

func binValues(vals []float64, n int) []Bin {
	if n <= 0 {
		n = 30
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	// Work in half steps: hi-lo overflows when the range exceeds MaxFloat64.
	half := (hi/2 - lo/2) / float64(n)
	out := make([]Bin, n)
	for i := range out {
		out[i].Lo = lo + float64(i)*half + float64(i)*half
		out[i].Hi = lo + float64(i+1)*half + float64(i+1)*half
	}
	out[n-1].Hi = hi
	for _, v := range vals {
		pos := (v/2 - lo/2) / half
		i := n - 1
		if !math.IsNaN(pos) && pos < float64(n) {
			i = int(math.Max(pos, 0))
		}
		out[i].Count++
	}
	return out
}
