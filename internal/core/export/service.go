package export

import (
	"bytes"
	"fmt"
)

// Service picks the exporter for a format
type Service struct {
	exporters map[Format]Exporter
}

// NewService creates an export service with the default styling
func NewService() *Service {
	style := DefaultStyle()
	return &Service{
		exporters: map[Format]Exporter{
			FormatExcel: NewExcelExporter(style),
			FormatPDF:   NewPDFExporter(style),
			FormatCSV:   NewCSVExporter(),
		},
	}
}

// Export renders table in format and returns the bytes with their content
// type and file extension
func (s *Service) Export(table *Table, format Format) ([]byte, Exporter, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported export format: %s", format)
	}

	var buf bytes.Buffer
	if err := exporter.Export(table, &buf); err != nil {
		return nil, nil, fmt.Errorf("%s export failed: %w", format, err)
	}
	return buf.Bytes(), exporter, nil
}
