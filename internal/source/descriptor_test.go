package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferFormat(t *testing.T) {
	cases := map[string]Format{
		"a.csv":        FormatCSV,
		"A.CSV":        FormatCSV,
		"a.tsv":        FormatTSV,
		"notes.txt":    FormatText,
		"book.xlsx":    FormatXLSX,
		"data.parquet": FormatParquet,
		"a.csv.gz":     FormatGzip,
		"a.csv.lz4":    FormatLZ4,
		"bundle.zip":   FormatZip,
		"export.dat":   FormatUnknown,
		"noext":        FormatUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, InferFormat(path), path)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".XLSM")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)
	_, err = ParseFormat("xls")
	assert.Error(t, err)
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor("data/people.csv", FormatAuto, "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, LocalFile{Path: "data/people.csv"}, d)

	d, err = ParseDescriptor("file:///tmp/x.xlsx", FormatAuto, "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.xlsx", d.(LocalFile).Path)

	d, err = ParseDescriptor("mysql+pymysql://u:secret@db:3306/sales", FormatAuto, "orders", "", 50)
	require.NoError(t, err)
	q, ok := d.(DatabaseQuery)
	require.True(t, ok)
	assert.Equal(t, "orders", q.Table)
	assert.Equal(t, 50, q.Limit)
	assert.NotContains(t, q.String(), "secret")

	_, err = ParseDescriptor("oracle+cx_oracle://u:p@h:1521/xe", FormatAuto, "", "", 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = ParseDescriptor("mssql://u:p@h/db", FormatAuto, "", "", 0)
	require.ErrorAs(t, err, &ve)

	_, err = ParseDescriptor("   ", FormatAuto, "", "", 0)
	require.ErrorAs(t, err, &ve)
}

func TestParseConnString(t *testing.T) {
	d, dsn, err := ParseConnString("mysql+pymysql://user:pw@localhost/shop?charset=utf8mb4")
	require.NoError(t, err)
	assert.Equal(t, DialectMySQL, d)
	assert.Equal(t, "user:pw@tcp(localhost:3306)/shop?charset=utf8mb4&parseTime=true", dsn)

	d, dsn, err = ParseConnString("postgresql+psycopg2://user:pw@pg:5432/shop")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)
	assert.Equal(t, "postgres://user:pw@pg:5432/shop", dsn)

	d, dsn, err = ParseConnString("sqlite:///local.db")
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, d)
	assert.Equal(t, "local.db", dsn)

	_, dsn, _ = ParseConnString("sqlite:////var/data/x.db")
	assert.Equal(t, "/var/data/x.db", dsn)

	_, dsn, _ = ParseConnString("sqlite://")
	assert.Equal(t, ":memory:", dsn)

	_, _, err = ParseConnString("mysql:///nohost")
	assert.Error(t, err)
}

func TestRedactConnString(t *testing.T) {
	assert.Equal(t, "postgres://u:xxxxx@h/db", RedactConnString("postgres://u:pw@h/db"))
	assert.Equal(t, "sqlite:///x.db", RedactConnString("sqlite:///x.db"))
}
