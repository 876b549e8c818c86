package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/upload"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory OCRResultRepo
type fakeRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]models.OCRResult
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	creates   int

	// createGate, when set, holds Create until it is closed
	createGate chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]models.OCRResult)}
}

func (r *fakeRepo) Create(ctx context.Context, result *models.OCRResult) error {
	if r.createGate != nil {
		<-r.createGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if _, exists := r.records[result.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.records[result.ID] = *result
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*models.OCRResult, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]models.OCRResult, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OCRResult
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range updates {
		switch k {
		case "extracted_text":
			record.ExtractedText = v.(string)
		case "file_name":
			record.FileName = v.(string)
		case "image_url":
			url := v.(string)
			record.ImageURL = &url
		}
	}
	r.records[id] = record
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return 0, nil
	}
	delete(r.records, id)
	return 1, nil
}

func (r *fakeRepo) put(record models.OCRResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

const fakeStoreURL = "https://store.test/"

// fakeStore is an in-memory object store
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	noURL     bool
	uploads   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) UploadImage(ctx context.Context, data []byte, filename, contentType string) (*upload.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	path := upload.GenerateObjectPath("ocr-images", filename)
	s.objects[path] = data
	result := &upload.UploadResult{PublicID: path}
	if !s.noURL {
		result.URL = fakeStoreURL + path
	}
	return result, nil
}

func (s *fakeStore) Delete(ctx context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.objects[objectPath]; !ok {
		return fmt.Errorf("file not found: %s", objectPath)
	}
	delete(s.objects, objectPath)
	return nil
}

func (s *fakeStore) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeStoreURL) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeStoreURL), true
}

func (s *fakeStore) GetProviderName() string { return "fake" }

func (s *fakeStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeStore) seed(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = []byte("old")
	return fakeStoreURL + path
}

// fakeScheduler records jobs instead of running them
type fakeScheduler struct {
	mu       sync.Mutex
	payloads []PersistPayload
	err      error
}

func (s *fakeScheduler) Enqueue(jobType string, payload interface{}) (*jobs.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload.(PersistPayload))
	return &jobs.Job{ID: uuid.New(), Type: jobType, Payload: payload}, nil
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

// fakeOrphans is an in-memory OrphanRepo
type fakeOrphans struct {
	mu      sync.Mutex
	orphans map[uuid.UUID]*models.OrphanedObject
}

func newFakeOrphans() *fakeOrphans {
	return &fakeOrphans{orphans: make(map[uuid.UUID]*models.OrphanedObject)}
}

func (o *fakeOrphans) Record(ctx context.Context, path, reason, lastError string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, orphan := range o.orphans {
		if orphan.Path == path {
			orphan.LastError = lastError
			return nil
		}
	}
	id := uuid.New()
	o.orphans[id] = &models.OrphanedObject{ID: id, Path: path, Reason: reason, LastError: lastError}
	return nil
}

func (o *fakeOrphans) ListPending(ctx context.Context, maxAttempts, limit int) ([]models.OrphanedObject, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.OrphanedObject
	for _, orphan := range o.orphans {
		if maxAttempts > 0 && orphan.Attempts >= maxAttempts {
			continue
		}
		out = append(out, *orphan)
	}
	return out, nil
}

func (o *fakeOrphans) MarkAttempt(ctx context.Context, id uuid.UUID, lastError string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if orphan, ok := o.orphans[id]; ok {
		orphan.Attempts++
		orphan.LastError = lastError
	}
	return nil
}

func (o *fakeOrphans) Delete(ctx context.Context, id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.orphans, id)
	return nil
}

func (o *fakeOrphans) paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, orphan := range o.orphans {
		out = append(out, orphan.Path)
	}
	return out
}

// fakeRecognizer returns canned token rows
type fakeRecognizer struct {
	mu      sync.Mutex
	rows    []ocr.TokenRow
	err     error
	calls   int
	lastCfg ocr.EngineConfig
}

func (r *fakeRecognizer) Recognize(ctx context.Context, bitmap *image.Gray, cfg ocr.EngineConfig) ([]ocr.TokenRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastCfg = cfg
	return r.rows, r.err
}

func (r *fakeRecognizer) GetProviderName() string { return "fake engine" }

func tokenRow(text, conf string) ocr.TokenRow {
	return ocr.TokenRow{Text: text, Left: "1", Top: "2", Width: "3", Height: "4", Confidence: conf}
}

// pngBytes renders a small two-tone PNG
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 240, G: 240, B: 240, A: 255}
			if x%4 == 0 {
				c = color.RGBA{R: 10, G: 10, B: 10, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
