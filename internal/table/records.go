package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FromRecords builds a table from a header and string records as read from
// delimited text or a spreadsheet. Empty fields become Missing. A column whose
// non-missing fields all parse as plain floats is numeric, one holding only
// true/false is boolean, everything else is text. Ragged records are padded
// with Missing or truncated to the header width.
func FromRecords(name string, header []string, records [][]string) *Table {
	names := UniqueHeaders(header)
	cols := make([]*Column, len(names))
	for j, n := range names {
		cells := make([]Value, len(records))
		for i, rec := range records {
			if j < len(rec) && rec[j] != "" {
				cells[i] = Text(rec[j])
			}
		}
		cols[j] = &Column{Name: n, Kind: KindText, Cells: cells}
		inferKind(cols[j])
	}
	return &Table{Name: name, Columns: cols}
}

// UniqueHeaders fills blank header names and suffixes repeats with _1, _2, ...
func UniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		base := h
		for taken[h] {
			next[base]++
			h = fmt.Sprintf("%s_%d", base, next[base])
		}
		taken[h] = true
		out[i] = h
	}
	return out
}

func inferKind(c *Column) {
	nonMissing := 0
	numeric, boolean := true, true
	for _, v := range c.Cells {
		if !v.Valid {
			continue
		}
		nonMissing++
		if numeric {
			if _, ok := strictFloat(v.Str); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(v.Str); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			return
		}
	}
	if nonMissing == 0 {
		return
	}
	switch {
	case numeric:
		c.Kind = KindNumber
		for i, v := range c.Cells {
			if v.Valid {
				f, _ := strictFloat(v.Str)
				c.Cells[i] = Number(f)
			}
		}
	case boolean:
		c.Kind = KindBool
		for i, v := range c.Cells {
			if v.Valid {
				b, _ := parseBool(v.Str)
				c.Cells[i] = Boolean(b)
			}
		}
	}
}

// strictFloat accepts plain decimal notation only: no hex, no inf/nan, no
// surrounding whitespace.
func strictFloat(s string) (float64, bool) {
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// FromValues builds a table from driver-level values such as those scanned
// from database/sql rows. nil is Missing; a column keeps a non-text kind only
// when every non-nil value agrees on it, otherwise every value is rendered as text.
func FromValues(name string, header []string, rows [][]any) *Table {
	names := UniqueHeaders(header)
	cols := make([]*Column, len(names))
	for j, n := range names {
		kind := KindUnknown
		mixed := false
		for _, row := range rows {
			k := valueKind(row[j])
			if k == KindUnknown {
				continue
			}
			if kind == KindUnknown {
				kind = k
			} else if kind != k {
				mixed = true
				break
			}
		}
		if mixed {
			kind = KindText
		}
		cells := make([]Value, len(rows))
		for i, row := range rows {
			cells[i] = convertValue(kind, row[j])
		}
		cols[j] = &Column{Name: n, Kind: kind, Cells: cells}
	}
	return &Table{Name: name, Columns: cols}
}

func valueKind(v any) Kind {
	switch x := v.(type) {
	case nil:
		return KindUnknown
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return KindNumber
	case float64:
		if math.IsNaN(x) {
			return KindUnknown
		}
		return KindNumber
	case time.Time:
		return KindTime
	case bool:
		return KindBool
	default:
		return KindText
	}
}

func convertValue(kind Kind, v any) Value {
	if v == nil {
		return Missing()
	}
	switch kind {
	case KindNumber:
		switch x := v.(type) {
		case int:
			return Number(float64(x))
		case int8:
			return Number(float64(x))
		case int16:
			return Number(float64(x))
		case int32:
			return Number(float64(x))
		case int64:
			return Number(float64(x))
		case uint:
			return Number(float64(x))
		case uint8:
			return Number(float64(x))
		case uint16:
			return Number(float64(x))
		case uint32:
			return Number(float64(x))
		case uint64:
			return Number(float64(x))
		case float32:
			return Number(float64(x))
		case float64:
			if math.IsNaN(x) {
				return Missing()
			}
			return Number(x)
		}
	case KindTime:
		if t, ok := v.(time.Time); ok {
			return Timestamp(t)
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return Boolean(b)
		}
	}
	switch x := v.(type) {
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case time.Time:
		return Text(FormatValue(KindTime, Timestamp(x)))
	case float64:
		if math.IsNaN(x) {
			return Missing()
		}
		return Text(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return Text(fmt.Sprint(x))
	}
}
