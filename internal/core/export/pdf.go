package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfLineHeight   = 4.5
	pdfMaxCellLines = 8
)

// PDFExporter writes landscape A4 tables using gofpdf
type PDFExporter struct {
	style Style
}

// NewPDFExporter creates a new PDF exporter
func NewPDFExporter(style Style) *PDFExporter {
	return &PDFExporter{style: style}
}

func (p *PDFExporter) Export(table *Table, w io.Writer) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("no headers provided")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 8, tr(table.Title))
		pdf.Ln(9)
	}
	if !table.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(0, 5, "Generated: "+table.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
		pdf.Ln(8)
	}

	widths := p.columnWidths(pdf, table)
	_, pageHeight := pdf.GetPageSize()
	left, _, _, bottomMargin := pdf.GetMargins()

	p.drawHeader(pdf, tr, table.Headers, widths)

	r, g, b := hexToRGB(p.style.RowBgColor)
	for rowIdx, values := range table.Rows {
		cells := make([][]string, len(widths))
		lines := 1
		pdf.SetFont("Arial", "", p.style.FontSize)
		for i := range widths {
			text := ""
			if i < len(values) {
				text = tr(values[i])
			}
			cells[i] = wrapCell(pdf, text, widths[i]-2)
			if len(cells[i]) > lines {
				lines = len(cells[i])
			}
		}
		height := float64(lines) * pdfLineHeight

		if pdf.GetY()+height > pageHeight-bottomMargin {
			pdf.AddPage()
			p.drawHeader(pdf, tr, table.Headers, widths)
			pdf.SetFont("Arial", "", p.style.FontSize)
		}

		fill := rowIdx%2 == 1
		pdf.SetFillColor(r, g, b)
		x, y := left, pdf.GetY()
		for i, cellLines := range cells {
			style := "D"
			if fill {
				style = "FD"
			}
			pdf.Rect(x, y, widths[i], height, style)
			for n, line := range cellLines {
				pdf.SetXY(x+1, y+float64(n)*pdfLineHeight)
				pdf.CellFormat(widths[i]-2, pdfLineHeight, line, "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
		pdf.SetXY(left, y+height)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (p *PDFExporter) ContentType() string {
	return "application/pdf"
}

func (p *PDFExporter) FileExtension() string {
	return ".pdf"
}

func (p *PDFExporter) drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, widths []float64) {
	pdf.SetFont("Arial", "B", p.style.FontSize)
	r, g, b := hexToRGB(p.style.HeaderBgColor)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// columnWidths spreads the usable page width using ColumnWidths as weights
func (p *PDFExporter) columnWidths(pdf *gofpdf.Fpdf, table *Table) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	weights := make([]float64, len(table.Headers))
	for i := range weights {
		weights[i] = 10
		if w, ok := table.ColumnWidths[i]; ok && w > 0 {
			weights[i] = w
		}
	}
	total := sum(weights)

	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = usable * w / total
	}
	return widths
}

// wrapCell splits text into lines that fit width, keeping at most
// pdfMaxCellLines lines
func wrapCell(pdf *gofpdf.Fpdf, text string, width float64) []string {
	if text == "" {
		return []string{""}
	}
	raw := pdf.SplitLines([]byte(text), width)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, string(l))
	}
	if len(lines) > pdfMaxCellLines {
		lines = lines[:pdfMaxCellLines]
		lines[pdfMaxCellLines-1] += " ..."
	}
	return lines
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// hexToRGB converts a hex color to RGB, white when invalid
func hexToRGB(hex string) (int, int, int) {
	hex = stripHash(hex)
	if len(hex) != 6 {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
