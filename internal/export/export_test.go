package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datascrub-cli/internal/source"
	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tb, err := table.New("people",
		table.NewColumn("id", table.KindNumber, []table.Value{table.Number(1), table.Number(2.5), table.Missing()}),
		table.NewColumn("name", table.KindText, []table.Value{table.Text("Ana"), table.Missing(), table.Text("José")}),
		table.NewColumn("fecha", table.KindTime, []table.Value{table.Timestamp(day), table.Timestamp(day.Add(90 * time.Minute)), table.Missing()}),
		table.NewColumn("active", table.KindBool, []table.Value{table.Boolean(true), table.Boolean(false), table.Missing()}),
	)
	require.NoError(t, err)
	return tb
}

func TestWriteCSV_UTF8(t *testing.T) {
	var buf bytes.Buffer
	enc, err := WriteCSV(&buf, sampleTable(t), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, enc)
	want := "id,name,fecha,active\n" +
		"1,Ana,2024-01-05,true\n" +
		"2.5,,2024-01-05 01:30:00,false\n" +
		",José,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Latin1(t *testing.T) {
	tb := table.FromRecords("x", []string{"nombre"}, [][]string{{"José"}, {"Pe\xf1a"}, {"emoji 😀"}})
	var buf bytes.Buffer
	enc, err := WriteCSV(&buf, tb, CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, enc, "an invalid UTF-8 cell switches the file to Latin-1")
	assert.Equal(t, "nombre\nJos\xe9\nPe\xf1a\nemoji ?\n", buf.String())

	buf.Reset()
	enc, err = WriteCSV(&buf, table.FromRecords("x", []string{"a"}, [][]string{{"ñ"}}), CSVOptions{Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, enc)
	assert.Equal(t, "a\n\xf1\n", buf.String())
}

func TestWriteCSV_SingleColumnMissing(t *testing.T) {
	tb, err := table.New("v", table.NewColumn("v", table.KindText, []table.Value{table.Text("a"), table.Missing(), table.Text("b")}))
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = WriteCSV(&buf, tb, CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v\na\n\"\"\nb\n", buf.String())

	p := filepath.Join(t.TempDir(), "v.csv")
	_, err = CSVFile(p, tb, CSVOptions{})
	require.NoError(t, err)
	res, err := source.NewLoader(nil, source.Options{}).Load(context.Background(), source.LocalFile{Path: p})
	require.NoError(t, err)
	require.Equal(t, 3, res.Table.NumRows())
	assert.Equal(t, []string{""}, res.Table.Row(1))
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]string{"": EncodingAuto, "UTF8": EncodingUTF8, "ISO_8859_1": EncodingLatin1} {
		got, err := ParseEncoding(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("cp1252")
	assert.Error(t, err)
}

func TestCSVFile_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	tb := sampleTable(t)
	_, err := CSVFile(p, tb, CSVOptions{})
	require.NoError(t, err)
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file renamed away")

	res, err := source.NewLoader(nil, source.Options{}).Load(context.Background(), source.LocalFile{Path: p})
	require.NoError(t, err)
	assert.Equal(t, tb.ColumnNames(), res.Table.ColumnNames())
	assert.Equal(t, tb.NumRows(), res.Table.NumRows())
	for i := 0; i < tb.NumRows(); i++ {
		assert.Equal(t, tb.Row(i), res.Table.Row(i))
	}
}

func TestParquetFile_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.parquet")
	tb := sampleTable(t)
	require.NoError(t, ParquetFile(p, tb))

	res, err := source.NewLoader(nil, source.Options{}).Load(context.Background(), source.LocalFile{Path: p})
	require.NoError(t, err)
	assert.Equal(t, source.FormatParquet, res.Format)
	require.Equal(t, tb.NumCols(), res.Table.NumCols())
	for j, c := range res.Table.Columns {
		assert.Equal(t, tb.Columns[j].Kind, c.Kind, c.Name)
	}
	for i := 0; i < tb.NumRows(); i++ {
		assert.Equal(t, tb.Row(i), res.Table.Row(i))
	}
}

func TestWriteDatabase_SQLite(t *testing.T) {
	conn := "sqlite:///" + filepath.Join(t.TempDir(), "dest.db")
	db, _, err := source.OpenDatabase(conn)
	require.NoError(t, err)
	defer source.CloseDatabase(db)

	tb := sampleTable(t)
	ctx := context.Background()
	require.NoError(t, WriteDatabase(ctx, db, "people_clean", tb))
	// A second write replaces the table rather than appending.
	require.NoError(t, WriteDatabase(ctx, db, "people_clean", tb))

	res, err := source.NewLoader(nil, source.Options{}).Load(ctx, source.DatabaseQuery{ConnString: conn, Table: "people_clean"})
	require.NoError(t, err)
	assert.Equal(t, tb.NumRows(), res.Table.NumRows())
	assert.Equal(t, tb.ColumnNames(), res.Table.ColumnNames())
	id, ok := res.Table.Column("id")
	require.True(t, ok)
	assert.Equal(t, table.KindNumber, id.Kind)
	assert.Equal(t, 2.5, id.Cells[1].Num)
	assert.False(t, id.Cells[2].Valid)

	assert.Error(t, WriteDatabase(ctx, db, "bad name;", tb))
}
