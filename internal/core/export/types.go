package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an export file format
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
	FormatCSV   Format = "csv"
)

// ParseFormat accepts the format names used in query strings
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q (use: xlsx, pdf, csv)", raw)
	}
}

// Exporter writes a table in one file format
type Exporter interface {
	Export(table *Table, w io.Writer) error
	ContentType() string
	FileExtension() string
}

// Table is the data to be exported
type Table struct {
	Title       string
	GeneratedAt time.Time
	Headers     []string
	Rows        [][]string

	// ColumnWidths in characters, by column index. Excel only.
	ColumnWidths map[int]float64
	// WrapColumns holds column indexes whose cells wrap long text
	WrapColumns map[int]bool
}

// Style is shared by the spreadsheet and PDF exporters
type Style struct {
	HeaderBgColor string
	RowBgColor    string
	FontFamily    string
	FontSize      float64
}

// DefaultStyle returns the default export styling
func DefaultStyle() Style {
	return Style{
		HeaderBgColor: "#4472C4",
		RowBgColor:    "#F2F2F2",
		FontFamily:    "Arial",
		FontSize:      9,
	}
}
