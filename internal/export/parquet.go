package export

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

// ArrowSchema maps column kinds to Arrow types. Columns of unknown kind are
// written as strings.
func ArrowSchema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k table.Kind) arrow.DataType {
	switch k {
	case table.KindNumber:
		return arrow.PrimitiveTypes.Float64
	case table.KindTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case table.KindBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

// ToRecord copies t into an Arrow record; the caller must Release it.
func ToRecord(t *table.Table) arrow.Record {
	schema := ArrowSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	for j, c := range t.Columns {
		fb := b.Field(j)
		for _, v := range c.Cells {
			if !v.Valid {
				fb.AppendNull()
				continue
			}
			switch fb := fb.(type) {
			case *array.Float64Builder:
				fb.Append(v.Num)
			case *array.TimestampBuilder:
				fb.Append(arrow.Timestamp(v.Time.UTC().UnixMicro()))
			case *array.BooleanBuilder:
				fb.Append(v.Bool)
			case *array.StringBuilder:
				fb.Append(v.Str)
			}
		}
	}
	return b.NewRecord()
}

// ParquetFile writes t as a snappy-compressed Parquet file.
func ParquetFile(path string, t *table.Table) error {
	rec := ToRecord(t)
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(rec.Schema(), &buf, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
