package columnar

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/wippyai/fastsheet"
	"github.com/wippyai/fastsheet/cell"
)

// Timestamp is the Arrow type used for date/time columns. Microseconds
// cover every date a spreadsheet can hold; nanoseconds stop at 2262.
var Timestamp = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Schema derives one nullable field per column. Names come from the
// header, falling back to col_N; types come from the non-empty cells.
func Schema(t *fastsheet.Table) *arrow.Schema {
	names := fieldNames(t)
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: names[i], Type: columnType(col), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func fieldNames(t *fastsheet.Table) []string {
	header, hasHeader := t.Header()
	names := make([]string, t.Width())
	seen := make(map[string]bool, len(names))
	for i := range names {
		name := ""
		if hasHeader {
			name = header[i].String()
		}
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		// Suffix repeats until the name is free, so a later "a" cannot
		// take an "a_2" that appeared earlier in the header.
		for base, n := name, 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// columnType is the single kind shared by every non-empty cell, or utf8
// when kinds mix or the column is empty.
func columnType(col cell.Row) arrow.DataType {
	kind := cell.KindEmpty
	for _, c := range col {
		if c.IsEmpty() {
			continue
		}
		if kind == cell.KindEmpty {
			kind = c.Kind()
		} else if kind != c.Kind() {
			return arrow.BinaryTypes.String
		}
	}
	switch kind {
	case cell.KindNumber:
		return arrow.PrimitiveTypes.Float64
	case cell.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case cell.KindTime:
		return Timestamp
	default:
		return arrow.BinaryTypes.String
	}
}

// Record builds an Arrow record of t. Empty cells are null. The caller
// releases the record. A nil mem uses the Go allocator.
func Record(t *fastsheet.Table, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := Schema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, col := range t.Columns() {
		if err := appendColumn(b.Field(i), col); err != nil {
			return nil, fmt.Errorf("column %q: %w", schema.Field(i).Name, err)
		}
	}
	return b.NewRecord(), nil
}

func appendColumn(fb array.Builder, col cell.Row) error {
	fb.Reserve(len(col))
	for _, c := range col {
		if c.IsEmpty() {
			fb.AppendNull()
			continue
		}
		switch b := fb.(type) {
		case *array.Float64Builder:
			v, _ := c.Float()
			b.Append(v)
		case *array.BooleanBuilder:
			v, _ := c.Boolean()
			b.Append(v)
		case *array.TimestampBuilder:
			v, _ := c.Time()
			b.Append(arrow.Timestamp(v.UnixMicro()))
		case *array.StringBuilder:
			b.Append(c.String())
		default:
			return fmt.Errorf("unsupported builder %T", fb)
		}
	}
	return nil
}

// WriteParquet writes t to w as a snappy-compressed Parquet file with the
// Arrow schema stored in its metadata.
func WriteParquet(t *fastsheet.Table, w io.Writer) error {
	rec, err := Record(t, nil)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
