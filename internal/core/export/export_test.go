package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *Table {
	return &Table{
		Title:       "OCR Results",
		GeneratedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Headers:     []string{"ID", "File Name", "Extracted Text"},
		Rows: [][]string{
			{"1", "receipt.png", "Total 12.50"},
			{"2", "chat, \"quoted\".png", strings.Repeat("long line of text ", 60)},
		},
		ColumnWidths: map[int]float64{0: 10, 1: 20, 2: 60},
		WrapColumns:  map[int]bool{2: true},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw     string
		want    Format
		wantErr bool
	}{
		{"", FormatExcel, false},
		{"excel", FormatExcel, false},
		{"XLSX", FormatExcel, false},
		{" pdf ", FormatPDF, false},
		{"csv", FormatCSV, false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseFormat(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVExport(t *testing.T) {
	data, exporter, err := NewService().Export(sampleTable(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, ".csv", exporter.FileExtension())
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,File Name,Extracted Text", lines[0])
	assert.Equal(t, `2,"chat, ""quoted"".png",`, lines[2][:len(`2,"chat, ""quoted"".png",`)])
}

func TestExcelExport(t *testing.T) {
	data, exporter, err := NewService().Export(sampleTable(), FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", exporter.FileExtension())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)

	// title, generated, blank, header, two rows
	require.Len(t, rows, 6)
	assert.Equal(t, "OCR Results", rows[0][0])
	assert.Equal(t, []string{"ID", "File Name", "Extracted Text"}, rows[3])
	assert.Equal(t, "receipt.png", rows[4][1])
}

func TestPDFExport(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"x", "page-break.png", "Größe café"})
	}

	data, exporter, err := NewService().Export(table, FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFExportRequiresHeaders(t *testing.T) {
	_, _, err := NewService().Export(&Table{}, FormatPDF)
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "A", columnName(1))
	assert.Equal(t, "Z", columnName(26))
	assert.Equal(t, "AA", columnName(27))

	r, g, b := hexToRGB("#4472C4")
	assert.Equal(t, []int{0x44, 0x72, 0xC4}, []int{r, g, b})
	r, g, b = hexToRGB("nope")
	assert.Equal(t, []int{255, 255, 255}, []int{r, g, b})
}
