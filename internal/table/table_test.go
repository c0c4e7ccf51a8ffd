package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsRaggedColumns(t *testing.T) {
	a := NewColumn("a", KindNumber, []Value{Number(1), Number(2)})
	b := NewColumn("b", KindText, []Value{Text("x")})
	_, err := New("t", a, b)
	require.ErrorIs(t, err, ErrRaggedColumns)
}

func TestFromRecords_InfersKinds(t *testing.T) {
	tb := FromRecords("people", []string{"id", "name", "active", "score"}, [][]string{
		{"1", "Ann", "true", "1.5"},
		{"2", "", "false", "x"},
		{"3", "Bob"},
	})
	require.Equal(t, 3, tb.NumRows())
	require.Equal(t, 4, tb.NumCols())

	id, _ := tb.Column("id")
	assert.Equal(t, KindNumber, id.Kind)
	assert.Equal(t, 3.0, id.Cells[2].Num)

	name, _ := tb.Column("name")
	assert.Equal(t, KindText, name.Kind)
	assert.True(t, name.Cells[1].IsMissing(), "empty field is Missing")

	active, _ := tb.Column("active")
	assert.Equal(t, KindBool, active.Kind)
	assert.True(t, active.Cells[2].IsMissing(), "short record padded with Missing")

	score, _ := tb.Column("score")
	assert.Equal(t, KindText, score.Kind)
}

func TestFromRecords_StrictNumbersOnly(t *testing.T) {
	tb := FromRecords("t", []string{"a", "b", "c"}, [][]string{
		{"1,5", "0x10", " 7"},
		{"2", "3", "8"},
	})
	for _, c := range tb.Columns {
		assert.Equal(t, KindText, c.Kind, "column %s", c.Name)
	}
}

func TestUniqueHeaders(t *testing.T) {
	got := UniqueHeaders([]string{"\ufeffid", "a", "a", "", "a_1", "a"})
	assert.Equal(t, []string{"id", "a", "a_1", "Unnamed: 3", "a_1_1", "a_2"}, got)
}

func TestRowKey_MissingEqualsMissingOnly(t *testing.T) {
	c := NewColumn("c", KindText, []Value{Missing(), Missing(), Text("")})
	tb, err := New("t", c)
	require.NoError(t, err)
	assert.Equal(t, tb.RowKey(0), tb.RowKey(1))
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(2), "Missing is distinct from empty text")
}

func TestRowKey_CellBoundariesAreUnambiguous(t *testing.T) {
	tb, err := New("t",
		NewColumn("a", KindText, []Value{Text("x\x1f1y"), Text("x")}),
		NewColumn("b", KindText, []Value{Text("z"), Text("y\x1f1z")}))
	require.NoError(t, err)
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(1), "separator bytes inside cells")

	tb, err = New("t",
		NewColumn("a", KindText, []Value{Text("-"), Missing(), Text("1:")}),
		NewColumn("b", KindText, []Value{Missing(), Text("-"), Text("")}))
	require.NoError(t, err)
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(1))
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(2))
}

func TestRowKey_NegativeZero(t *testing.T) {
	tb, err := New("t", NewColumn("n", KindNumber, []Value{Number(0), Number(math.Copysign(0, -1)), Number(1)}))
	require.NoError(t, err)
	assert.Equal(t, tb.RowKey(0), tb.RowKey(1))
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(2))
}

func TestClone_DoesNotAlias(t *testing.T) {
	tb := FromRecords("t", []string{"a"}, [][]string{{"x"}})
	cp := tb.Clone()
	cp.Columns[0].Cells[0] = Text("changed")
	assert.Equal(t, "x", tb.Columns[0].Cells[0].Str)
	assert.False(t, tb.Equal(cp))
}

func TestSelectRowsAndHead(t *testing.T) {
	tb := FromRecords("t", []string{"n"}, [][]string{{"1"}, {"2"}, {"3"}})
	sel := tb.SelectRows([]int{2, 0})
	assert.Equal(t, []string{"3"}, sel.Row(0))
	assert.Equal(t, []string{"1"}, sel.Row(1))
	assert.Equal(t, 2, tb.Head(2).NumRows())
	assert.Equal(t, 3, tb.Head(10).NumRows())
}

func TestFromValues(t *testing.T) {
	ts := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tb := FromValues("q", []string{"id", "when", "label", "mixed", "empty"}, [][]any{
		{int64(1), ts, []byte("a"), int64(1), nil},
		{int64(2), nil, "b", "two", nil},
	})
	kinds := map[string]Kind{}
	for _, c := range tb.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, KindNumber, kinds["id"])
	assert.Equal(t, KindTime, kinds["when"])
	assert.Equal(t, KindText, kinds["label"])
	assert.Equal(t, KindText, kinds["mixed"])
	assert.Equal(t, KindUnknown, kinds["empty"])
	assert.Equal(t, []string{"1", "2024-01-05", "a", "1", ""}, tb.Row(0))
	assert.Equal(t, 3, tb.MissingCount())
}

func TestMemoryBytes(t *testing.T) {
	empty := &Table{}
	assert.Zero(t, empty.MemoryBytes())

	c := NewColumn("ab", KindText, []Value{Text("xyz"), Missing()})
	n := NewColumn("n", KindNumber, []Value{Number(1), Number(2)})
	tb, err := New("t", c, n)
	require.NoError(t, err)
	// text: 24+2 + (1+16+3) + 1 ; number: 24+1 + 2*(1+8)
	assert.Equal(t, int64(26+20+1+25+18), tb.MemoryBytes())
}
