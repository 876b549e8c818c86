package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter writes RFC 4180 CSV with a header row
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(table *Table, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (e *CSVExporter) FileExtension() string {
	return ".csv"
}
