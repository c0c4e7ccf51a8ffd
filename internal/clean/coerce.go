package clean

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// Policy constants. They are not configurable.
const (
	// NumericThreshold is the minimum share of parseable cells for a text
	// column to be treated as numeric.
	NumericThreshold = 0.7
	// DateThreshold is the minimum share of parseable cells for a
	// date-named column to be converted to datetimes.
	DateThreshold = 0.6
)

// DateKeywords mark a column as date-like when contained in its name.
var DateKeywords = []string{"fecha", "date", "fech", "fch"}

// IsDateColumn reports whether name contains a date keyword, ignoring case.
func IsDateColumn(name string) bool {
	return NameHasKeyword(name, DateKeywords)
}

// NameHasKeyword reports whether name contains any keyword, ignoring case.
func NameHasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsBlankToken reports whether s, once trimmed, is one of the placeholders
// used for absent data.
func IsBlankToken(s string) bool {
	t := strings.TrimSpace(s)
	switch t {
	case "", "NULL", "null", "None", "-":
		return true
	}
	return strings.EqualFold(t, "NA") || strings.EqualFold(t, "N/A")
}

// ParseNumber parses s as a finite float after replacing decimal commas with dots.
func ParseNumber(s string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if raw == "" || strings.ContainsAny(raw, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// NumericFraction counts how many non-missing cells of c parse as numbers.
// Non-text columns yield (0, 0).
func NumericFraction(c *table.Column) (ok, total int) {
	if c.Kind != table.KindText {
		return 0, 0
	}
	for _, v := range c.Cells {
		if !v.Valid {
			continue
		}
		total++
		if _, parsed := ParseNumber(v.Str); parsed {
			ok++
		}
	}
	return ok, total
}

// MeetsThreshold reports ok/total >= threshold, false when total is zero.
func MeetsThreshold(ok, total int, threshold float64) bool {
	if total == 0 {
		return false
	}
	return float64(ok)/float64(total) >= threshold
}

var isoLayouts = []string{
	"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05.999999999", time.RFC3339, time.RFC3339Nano,
	"2006/01/02", "2006/01/02 15:04", "2006/01/02 15:04:05", "2006.01.02",
}

var dayFirstLayouts = []string{
	"2/1/2006", "2/1/2006 15:04", "2/1/2006 15:04:05", "2-1-2006", "2-1-2006 15:04", "2-1-2006 15:04:05",
	"2.1.2006", "2.1.2006 15:04", "2/1/06", "2-1-06", "2.1.06",
	"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-Jan-06", "2 Jan 2006 15:04", "Mon, 2 Jan 2006",
}

var monthFirstLayouts = []string{
	"1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05", "1-2-2006",
	"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "Jan 2, 2006 15:04",
}

// ParseDate parses s as a date or date-time, reading ambiguous numeric dates
// day first and falling back to month first when the day-first reading is invalid.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, group := range [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts} {
		for _, l := range group {
			if t, err := time.Parse(l, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// DateFraction counts how many non-missing cells of c parse as dates.
// Datetime columns count every non-missing cell as parsed.
func DateFraction(c *table.Column) (ok, total int) {
	for i, v := range c.Cells {
		if !v.Valid {
			continue
		}
		total++
		if c.Kind == table.KindTime {
			ok++
			continue
		}
		if _, parsed := ParseDate(c.Format(i)); parsed {
			ok++
		}
	}
	return ok, total
}
