package source

import (
	"bytes"
	"context"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

func readParquet(name, src string, data []byte) (*Result, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data), file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, &ParseError{Source: src, Format: FormatParquet, Err: err}
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, &ParseError{Source: src, Format: FormatParquet, Err: err}
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, &ParseError{Source: src, Format: FormatParquet, Err: err}
	}
	defer tbl.Release()

	return &Result{Table: FromArrow(name, tbl), Format: FormatParquet}, nil
}

// FromArrow copies an Arrow table into a table. Integer, float and decimal
// columns become numeric, timestamps and dates datetime, booleans boolean;
// anything else is rendered as text.
func FromArrow(name string, tbl arrow.Table) *table.Table {
	schema := tbl.Schema()
	n := int(tbl.NumRows())
	header := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		header[i] = f.Name
	}
	names := table.UniqueHeaders(header)
	out := &table.Table{Name: name}
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		kind := arrowKind(col.DataType())
		cells := make([]table.Value, 0, n)
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				cells = append(cells, arrowValue(chunk, j))
			}
		}
		out.Columns = append(out.Columns, table.NewColumn(names[i], kind, cells))
	}
	return out
}

func arrowKind(dt arrow.DataType) table.Kind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64, arrow.DECIMAL128:
		return table.KindNumber
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return table.KindTime
	case arrow.BOOL:
		return table.KindBool
	}
	return table.KindText
}

func arrowValue(col arrow.Array, i int) table.Value {
	if col.IsNull(i) {
		return table.Missing()
	}
	switch c := col.(type) {
	case *array.Int8:
		return table.Number(float64(c.Value(i)))
	case *array.Int16:
		return table.Number(float64(c.Value(i)))
	case *array.Int32:
		return table.Number(float64(c.Value(i)))
	case *array.Int64:
		return table.Number(float64(c.Value(i)))
	case *array.Uint8:
		return table.Number(float64(c.Value(i)))
	case *array.Uint16:
		return table.Number(float64(c.Value(i)))
	case *array.Uint32:
		return table.Number(float64(c.Value(i)))
	case *array.Uint64:
		return table.Number(float64(c.Value(i)))
	case *array.Float32:
		return finite(float64(c.Value(i)))
	case *array.Float64:
		return finite(c.Value(i))
	case *array.Decimal128:
		dt := c.DataType().(*arrow.Decimal128Type)
		return finite(c.Value(i).ToFloat64(dt.Scale))
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return table.Timestamp(c.Value(i).ToTime(unit).UTC())
	case *array.Date32:
		return table.Timestamp(c.Value(i).ToTime().UTC())
	case *array.Date64:
		return table.Timestamp(c.Value(i).ToTime().UTC())
	case *array.Boolean:
		return table.Boolean(c.Value(i))
	case *array.String:
		return table.Text(c.Value(i))
	case *array.LargeString:
		return table.Text(c.Value(i))
	case *array.Binary:
		return table.Text(string(c.Value(i)))
	}
	return table.Text(col.ValueStr(i))
}

func finite(f float64) table.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return table.Missing()
	}
	return table.Number(f)
}
