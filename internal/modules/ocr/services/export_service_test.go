package services

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/export"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestResultsTable(t *testing.T) {
	url := "https://store.test/ocr-images/a.png"
	id := uuid.New()
	results := []models.OCRResult{
		{
			ID:            id,
			FileName:      "a.png",
			ExtractedText: "Hello world",
			ImageURL:      &url,
			ProcessedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600)),
			Metadata:      datatypes.JSON(`{"languages":["eng","ind"],"category":"chat","mode":11,"word_count":2}`),
		},
		{
			ID:          uuid.New(),
			FileName:    "b.png",
			ProcessedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	table := ResultsTable(results, time.Now())

	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Headers, len(table.Rows[0]))
	assert.Equal(t, []string{
		id.String(), "2024-05-01T05:00:00Z", "a.png", "chat", "eng+ind", "2", url, "Hello world",
	}, table.Rows[0])
	assert.Equal(t, []string{"", "", "", ""}, table.Rows[1][3:7])
}

func TestResultsTableMalformedMetadata(t *testing.T) {
	var logs bytes.Buffer
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = zerolog.New(os.Stderr) })

	id := uuid.New()
	table := ResultsTable([]models.OCRResult{{
		ID:            id,
		FileName:      "c.png",
		ExtractedText: "kept",
		ProcessedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Metadata:      datatypes.JSON(`{"languages":`),
	}}, time.Now())

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "kept", table.Rows[0][7])
	assert.Equal(t, "", table.Rows[0][3])
	assert.Contains(t, logs.String(), id.String())
	assert.Contains(t, logs.String(), "Unreadable metadata")
}

func TestExportResults(t *testing.T) {
	repo := newFakeRepo()
	persistence := NewPersistenceService(repo, nil, nil, nil, false)
	svc := NewExportService(persistence, export.NewService())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }

	file, err := svc.ExportResults(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "ocr-results-20240501-083000.csv", file.FileName)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Contains(t, string(file.Data), "ID,Processed At,File Name")

	_, err = svc.ExportResults(context.Background(), "docx")
	assert.True(t, apperror.IsKind(err, apperror.KindClientInput))
}
