package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"github.com/apache/arrow/go/v15/parquet"
	"github.com/apache/arrow/go/v15/parquet/compress"
	"github.com/apache/arrow/go/v15/parquet/pqarrow"
)

// ParquetSink writes snappy-compressed parquet files under a local directory.
// Flat tables become <dir>/<table>.parquet; partitioned tables become
// hive-style <dir>/<table>/<day_column>=<day>/data.parquet, with the day
// encoded in the path rather than the file.
type ParquetSink struct {
	dir   string
	alloc memory.Allocator
}

// NewParquetSink creates the output directory and returns a ready sink.
func NewParquetSink(dir string) (*ParquetSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &ParquetSink{dir: dir, alloc: memory.DefaultAllocator}, nil
}

// WriteTable writes one file for the given table (and partition day, when
// set), replacing any previous file at the same path.
func (s *ParquetSink) WriteTable(ctx context.Context, t Table, day string, rows [][]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, t.Name+".parquet")
	if t.Partitioned() {
		if day == "" {
			return fmt.Errorf("partition day is required for %s", t.Name)
		}
		partDir := filepath.Join(s.dir, t.Name, fmt.Sprintf("%s=%s", t.PartitionColumn, day))
		if err := os.MkdirAll(partDir, 0o755); err != nil {
			return fmt.Errorf("creating partition directory: %w", err)
		}
		path = filepath.Join(partDir, "data.parquet")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := s.writeFile(f, t, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (s *ParquetSink) writeFile(f *os.File, t Table, rows [][]any) error {
	schema := arrowSchema(t)

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("opening parquet writer: %w", err)
	}

	b := array.NewRecordBuilder(s.alloc, schema)
	defer b.Release()

	for _, row := range rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row has %d values, want %d", len(row), len(t.Columns))
		}
		for i, c := range t.Columns {
			if err := appendValue(b.Field(i), c, row[i]); err != nil {
				return err
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	if err := w.Write(rec); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return w.Close()
}

func arrowSchema(t Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: c.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k Kind) arrow.DataType {
	switch k {
	case KindInt64:
		return arrow.PrimitiveTypes.Int64
	case KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(fb array.Builder, c Column, v any) error {
	if v == nil {
		fb.AppendNull()
		return nil
	}

	switch b := fb.(type) {
	case *array.Int64Builder:
		val, ok := v.(int64)
		if !ok {
			return typeMismatch(c, v)
		}
		b.Append(val)
	case *array.Float64Builder:
		val, ok := v.(float64)
		if !ok {
			return typeMismatch(c, v)
		}
		b.Append(val)
	case *array.BooleanBuilder:
		val, ok := v.(bool)
		if !ok {
			return typeMismatch(c, v)
		}
		b.Append(val)
	case *array.TimestampBuilder:
		val, ok := v.(time.Time)
		if !ok {
			return typeMismatch(c, v)
		}
		b.Append(arrow.Timestamp(val.UnixMicro()))
	case *array.StringBuilder:
		val, ok := v.(string)
		if !ok {
			return typeMismatch(c, v)
		}
		b.Append(val)
	default:
		return fmt.Errorf("unsupported builder for column %s", c.Name)
	}
	return nil
}

func typeMismatch(c Column, v any) error {
	return fmt.Errorf("column %s: unexpected value type %T", c.Name, v)
}
