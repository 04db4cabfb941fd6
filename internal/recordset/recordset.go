// Package recordset persists measurement records as compressed parquet files.
// One file per fetch run; re-running a fetch overwrites the file.
package recordset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"openaq-archiver/internal/models"
)

// Row is one stored measurement plus whether any of its columns was null.
// Null cells read back as zero values; HasNulls tells them apart from real
// zeroes so the quality checker can count and drop null rows.
type Row struct {
	models.Measurement
	HasNulls bool
}

// Columns returns the record set column names in file order.
func Columns() []string {
	return []string{"timestamp", "value", "parameter", "sensor_id"}
}

func schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "timestamp", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "parameter", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "sensor_id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
}

// WriteFile writes records to a Snappy-compressed parquet file, creating
// parent directories as needed. An existing file is replaced.
func WriteFile(path string, records []models.Measurement) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create record set file: %w", err)
	}
	defer out.Close()

	recordSchema := schema()
	writerProps := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))

	writer, err := pqarrow.NewFileWriter(recordSchema, out, writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, recordSchema)
	defer builder.Release()

	timestamps := builder.Field(0).(*array.StringBuilder)
	values := builder.Field(1).(*array.Float64Builder)
	parameters := builder.Field(2).(*array.StringBuilder)
	sensorIDs := builder.Field(3).(*array.Int64Builder)

	for _, record := range records {
		timestamps.Append(record.Timestamp)
		values.Append(record.Value)
		parameters.Append(record.Parameter)
		sensorIDs.Append(record.SensorID)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record set: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize record set: %w", err)
	}

	return nil
}

// ReadFile loads a record set. A missing file surfaces as an error matching
// fs.ErrNotExist so callers can report it distinctly.
func ReadFile(path string) ([]Row, error) {
	reader, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record set: %w", err)
	}
	defer reader.Close()

	parquetReader, err := file.NewParquetReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	defer parquetReader.Close()

	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read record set table: %w", err)
	}
	defer table.Release()

	rows := make([]Row, 0, table.NumRows())

	// TableReader yields row-aligned batches across all columns.
	tableReader := array.NewTableReader(table, 1024)
	defer tableReader.Release()

	for tableReader.Next() {
		rec := tableReader.Record()

		timestamps := rec.Column(0).(*array.String)
		values := rec.Column(1).(*array.Float64)
		parameters := rec.Column(2).(*array.String)
		sensorIDs := rec.Column(3).(*array.Int64)

		for j := 0; j < int(rec.NumRows()); j++ {
			row := Row{
				HasNulls: timestamps.IsNull(j) || values.IsNull(j) || parameters.IsNull(j) || sensorIDs.IsNull(j),
			}
			if timestamps.IsValid(j) {
				row.Timestamp = timestamps.Value(j)
			}
			if values.IsValid(j) {
				row.Value = values.Value(j)
			}
			if parameters.IsValid(j) {
				row.Parameter = parameters.Value(j)
			}
			if sensorIDs.IsValid(j) {
				row.SensorID = sensorIDs.Value(j)
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}
