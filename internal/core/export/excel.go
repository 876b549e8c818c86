package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes .xlsx workbooks using excelize
type ExcelExporter struct {
	sheetName string
	style     Style
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(style Style) *ExcelExporter {
	return &ExcelExporter{
		sheetName: "Results",
		style:     style,
	}
}

func (e *ExcelExporter) Export(table *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return err
	}

	row := 1
	if table.Title != "" {
		titleStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 14, Family: e.style.FontFamily},
		})
		if err != nil {
			return fmt.Errorf("failed to create title style: %w", err)
		}
		if err := e.setCell(f, 1, row, table.Title, titleStyle); err != nil {
			return err
		}
		row++
		if !table.GeneratedAt.IsZero() {
			if err := f.SetCellValue(e.sheetName, cellName(1, row), "Generated: "+table.GeneratedAt.Format("2006-01-02 15:04:05 MST")); err != nil {
				return err
			}
			row++
		}
		row++
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: e.style.FontSize, Family: e.style.FontFamily, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripHash(e.style.HeaderBgColor)}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	plainStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: e.style.FontSize, Family: e.style.FontFamily},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("failed to create row style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: e.style.FontSize, Family: e.style.FontFamily},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create wrap style: %w", err)
	}

	headerRow := row
	for i, header := range table.Headers {
		if err := e.setCell(f, i+1, row, header, headerStyle); err != nil {
			return err
		}
		if width, ok := table.ColumnWidths[i]; ok {
			col := columnName(i + 1)
			if err := f.SetColWidth(e.sheetName, col, col, width); err != nil {
				return err
			}
		}
	}
	row++

	for _, values := range table.Rows {
		for i, value := range values {
			style := plainStyle
			if table.WrapColumns[i] {
				style = wrapStyle
			}
			if err := e.setCell(f, i+1, row, value, style); err != nil {
				return err
			}
		}
		row++
	}

	if len(table.Headers) > 0 {
		if err := f.SetPanes(e.sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: cellName(1, headerRow+1),
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
		lastCell := cellName(len(table.Headers), headerRow+len(table.Rows))
		if err := f.AutoFilter(e.sheetName, cellName(1, headerRow)+":"+lastCell, nil); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) FileExtension() string {
	return ".xlsx"
}

func (e *ExcelExporter) setCell(f *excelize.File, col, row int, value string, style int) error {
	cell := cellName(col, row)
	if err := f.SetCellStr(e.sheetName, cell, value); err != nil {
		return err
	}
	return f.SetCellStyle(e.sheetName, cell, cell, style)
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnName(col), row)
}

// columnName converts a column number to its letters (1 -> A, 27 -> AA)
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+(col%26))) + name
		col /= 26
	}
	return name
}

func stripHash(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}
