package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/export"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/apperror"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
)

var resultColumns = []string{"ID", "Processed At", "File Name", "Category", "Languages", "Words", "Image URL", "Extracted Text"}

// ExportFile is a rendered export ready to be sent
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the stored results as a downloadable file
type ExportService struct {
	persistence *PersistenceService
	exporter    *export.Service
	now         func() time.Time
}

func NewExportService(persistence *PersistenceService, exporter *export.Service) *ExportService {
	return &ExportService{
		persistence: persistence,
		exporter:    exporter,
		now:         time.Now,
	}
}

// ExportResults lists every stored result and renders it in format
func (s *ExportService) ExportResults(ctx context.Context, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, apperror.ClientInputf(err, "Unsupported export format %q. Use xlsx, pdf or csv.", format)
	}

	results, err := s.persistence.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	data, exporter, err := s.exporter.Export(ResultsTable(results, now), f)
	if err != nil {
		return nil, apperror.Internal("Failed to export results: "+err.Error(), err)
	}

	return &ExportFile{
		FileName:    "ocr-results-" + now.Format("20060102-150405") + exporter.FileExtension(),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

// ResultsTable flattens results into export rows, one per record
func ResultsTable(results []models.OCRResult, generatedAt time.Time) *export.Table {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		var meta models.RecordMetadata
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &meta); err != nil {
				utils.LogWarn("⚠️ Unreadable metadata, exporting without it", map[string]interface{}{
					"record_id": r.ID.String(),
					"error":     err.Error(),
				})
			}
		}

		imageURL := ""
		if r.ImageURL != nil {
			imageURL = *r.ImageURL
		}
		words := ""
		if meta.WordCount > 0 {
			words = strconv.Itoa(meta.WordCount)
		}

		rows = append(rows, []string{
			r.ID.String(),
			r.ProcessedAt.UTC().Format(time.RFC3339),
			r.FileName,
			meta.Category,
			strings.Join(meta.Languages, "+"),
			words,
			imageURL,
			r.ExtractedText,
		})
	}

	return &export.Table{
		Title:       "OCR Results",
		GeneratedAt: generatedAt,
		Headers:     resultColumns,
		Rows:        rows,
		ColumnWidths: map[int]float64{
			0: 38, 1: 22, 2: 24, 3: 10, 4: 12, 5: 8, 6: 40, 7: 80,
		},
		WrapColumns: map[int]bool{7: true},
	}
}
