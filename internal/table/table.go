package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the logical type shared by every cell of a column.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindNumber
	KindTime
	KindBool
)

// String returns the dtype label used in profiles.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "numeric"
	case KindTime:
		return "datetime"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a single cell. A Value with Valid=false is the Missing sentinel;
// the payload fields are read according to the owning column's Kind.
type Value struct {
	Valid bool
	Str   string
	Num   float64
	Time  time.Time
	Bool  bool
}

func Missing() Value { return Value{} }
func Text(s string) Value { return Value{Valid: true, Str: s} }
func Number(f float64) Value { return Value{Valid: true, Num: f} }
func Timestamp(t time.Time) Value { return Value{Valid: true, Time: t} }
func Boolean(b bool) Value { return Value{Valid: true, Bool: b} }
func (v Value) IsMissing() bool { return !v.Valid }

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Value
}

// NewColumn returns a column of the given kind holding cells.
func NewColumn(name string, kind Kind, cells []Value) *Column {
	return &Column{Name: name, Kind: kind, Cells: cells}
}

// Len reports the number of cells.
func (c *Column) Len() int { return len(c.Cells) }

// MissingCount counts Missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Cells {
		if !v.Valid {
			n++
		}
	}
	return n
}

// Clone returns a deep copy that shares no storage with c.
func (c *Column) Clone() *Column {
	cells := make([]Value, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
}

// Format renders cell i as display text. Missing renders as "".
func (c *Column) Format(i int) string {
	return FormatValue(c.Kind, c.Cells[i])
}

// FormatValue renders v as text according to kind.
func FormatValue(kind Kind, v Value) string {
	if !v.Valid {
		return ""
	}
	switch kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Table is an ordered set of equally long named columns.
type Table struct {
	Name    string
	Columns []*Column
}

// ErrRaggedColumns is returned when columns differ in length.
var ErrRaggedColumns = errors.New("columns have unequal lengths")

// New builds a table and checks that all columns share the same row count.
func New(name string, cols ...*Column) (*Table, error) {
	for _, c := range cols {
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: column %q has %d rows, column %q has %d", ErrRaggedColumns, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
	}
	return &Table{Name: name, Columns: cols}, nil
}

// NumRows reports the row count; a table without columns has zero rows.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols reports the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames lists column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Row renders row i as display strings.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Format(i)
	}
	return out
}

// MissingCount sums Missing cells over all columns.
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.Columns {
		n += c.MissingCount()
	}
	return n
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Clone()
	}
	return &Table{Name: t.Name, Columns: cols}
}

// SelectRows returns a new table holding the given rows in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for j, c := range t.Columns {
		cells := make([]Value, len(rows))
		for k, r := range rows {
			cells[k] = c.Cells[r]
		}
		cols[j] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return &Table{Name: t.Name, Columns: cols}
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= t.NumRows() {
		return t.Clone()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.SelectRows(idx)
}

// RowKey encodes row i so that two rows share a key exactly when every cell
// is equal. Two Missing cells at the same position compare equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for _, c := range t.Columns {
		v := c.Cells[i]
		if !v.Valid {
			b.WriteByte('-')
			continue
		}
		var payload string
		switch c.Kind {
		case KindNumber:
			f := v.Num
			if f == 0 {
				f = 0 // -0 and 0 are the same value
			}
			payload = strconv.FormatFloat(f, 'g', -1, 64)
		case KindTime:
			payload = v.Time.UTC().Format(time.RFC3339Nano)
		case KindBool:
			payload = strconv.FormatBool(v.Bool)
		default:
			payload = v.Str
		}
		// kind, payload length, payload: no cell text can forge a boundary
		b.WriteByte(byte('0' + c.Kind))
		b.WriteString(strconv.Itoa(len(payload)))
		b.WriteByte(':')
		b.WriteString(payload)
	}
	return b.String()
}

// Equal reports whether both tables have the same column names, kinds and cells.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() {
		return false
	}
	for j, c := range t.Columns {
		oc := o.Columns[j]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
	}
	for i := 0; i < t.NumRows(); i++ {
		if t.RowKey(i) != o.RowKey(i) {
			return false
		}
	}
	return true
}

// MemoryBytes estimates the in-memory footprint in bytes: a 24-byte slice
// header plus the name per column, and per cell one validity byte plus the
// payload (text 16+len, number 8, datetime 24, boolean 1).
func (t *Table) MemoryBytes() int64 {
	var total int64
	for _, c := range t.Columns {
		total += 24 + int64(len(c.Name))
		for _, v := range c.Cells {
			total++
			if !v.Valid {
				continue
			}
			switch c.Kind {
			case KindText:
				total += 16 + int64(len(v.Str))
			case KindNumber:
				total += 8
			case KindTime:
				total += 24
			case KindBool:
				total++
			}
		}
	}
	return total
}
