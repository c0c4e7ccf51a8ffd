package analysis

import (
	"strings"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// FilterColumns selects the columns whose name contains term, ignoring case.
// An empty term, or one that matches nothing, selects every column.
func FilterColumns(cols []*table.Column, term string) []*table.Column {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return cols
	}
	var out []*table.Column
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cols
	}
	return out
}
