package analysis

import (
	"github.com/KaramelBytes/datascrub-cli/internal/clean"
	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// DuplicateReport counts exact duplicate rows.
type DuplicateReport struct {
	Rows int `json:"rows" yaml:"rows"`
	// Count is the number of rows repeating an earlier identical row.
	Count int `json:"count" yaml:"count"`
	// Unique is Rows - Count.
	Unique int `json:"unique" yaml:"unique"`
	// DropPreview is how many rows a deduplication pass would remove.
	DropPreview int `json:"drop_preview" yaml:"drop_preview"`
}

// AnalyzeDuplicates reports duplicate counts without modifying t.
func AnalyzeDuplicates(t *table.Table) DuplicateReport {
	n := countDuplicates(t)
	return DuplicateReport{
		Rows:        t.NumRows(),
		Count:       n,
		Unique:      t.NumRows() - n,
		DropPreview: t.NumRows() - clean.Dedup(t).NumRows(),
	}
}

// DuplicateRows returns every row that belongs to a group of identical rows,
// including the first occurrence, in original order.
func DuplicateRows(t *table.Table) *table.Table {
	counts := make(map[string]int, t.NumRows())
	keys := make([]string, t.NumRows())
	for i := range keys {
		keys[i] = t.RowKey(i)
		counts[keys[i]]++
	}
	var rows []int
	for i, k := range keys {
		if counts[k] > 1 {
			rows = append(rows, i)
		}
	}
	return t.SelectRows(rows)
}

func countDuplicates(t *table.Table) int {
	seen := make(map[string]struct{}, t.NumRows())
	n := 0
	for i := 0; i < t.NumRows(); i++ {
		k := t.RowKey(i)
		if _, ok := seen[k]; ok {
			n++
			continue
		}
		seen[k] = struct{}{}
	}
	return n
}
