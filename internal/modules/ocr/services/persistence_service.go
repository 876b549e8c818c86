package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/upload"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/repositories"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/apperror"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PersistJobType is the job type of the deferred record write
const PersistJobType = "persist_ocr_result"

// ObjectStore is the part of the upload service the workflow relies on
type ObjectStore interface {
	UploadImage(ctx context.Context, data []byte, filename, contentType string) (*upload.UploadResult, error)
	Delete(ctx context.Context, objectPath string) error
	PathFromURL(url string) (string, bool)
	GetProviderName() string
}

// JobScheduler hands work to the deferred executor
type JobScheduler interface {
	Enqueue(jobType string, payload interface{}) (*jobs.Job, error)
}

// ImageUpload is an uploaded file read into memory
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// StoredImage is the outcome of a successful image upload
type StoredImage struct {
	URL  string
	Path string
}

// PersistPayload is the plain data carried by a deferred write
type PersistPayload struct {
	RecordID      uuid.UUID
	FileName      string
	ExtractedText string
	ImageURL      *string
	ObjectPath    string
	ProcessedAt   time.Time
	Metadata      models.RecordMetadata
}

type PersistenceService struct {
	repo        repositories.OCRResultRepo
	orphans     repositories.OrphanRepo
	store       ObjectStore
	scheduler   JobScheduler
	storeImages bool
	now         func() time.Time

	// detached writes started when the queue is unavailable
	inflight sync.WaitGroup
}

// NewPersistenceService wires the workflow. store and orphans may be nil.
func NewPersistenceService(repo repositories.OCRResultRepo, orphans repositories.OrphanRepo, store ObjectStore, scheduler JobScheduler, storeImages bool) *PersistenceService {
	return &PersistenceService{
		repo:        repo,
		orphans:     orphans,
		store:       store,
		scheduler:   scheduler,
		storeImages: storeImages,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StoresImages reports whether uploads go to the object store
func (s *PersistenceService) StoresImages() bool {
	return s.storeImages && s.store != nil
}

// StoreImage uploads the original bytes. Failures are logged and yield nil;
// persistence then continues without an image reference.
func (s *PersistenceService) StoreImage(ctx context.Context, img ImageUpload) *StoredImage {
	if !s.StoresImages() {
		return nil
	}

	fields := map[string]interface{}{"file_name": img.FileName, "provider": s.store.GetProviderName()}

	result, err := s.store.UploadImage(ctx, img.Data, img.FileName, img.ContentType)
	if err != nil {
		utils.LogError("⚠️ Image upload failed, continuing without image", err, fields)
		return nil
	}

	url := result.PublicURL()
	if url == "" {
		utils.LogWarn("⚠️ Image uploaded but no public URL returned, reclaiming", fields)
		s.ReclaimObject(ctx, result.PublicID, models.OrphanReasonNoURL)
		return nil
	}

	fields["path"] = result.PublicID
	utils.LogInfo("💾 Image stored", fields)

	return &StoredImage{URL: url, Path: result.PublicID}
}

// SchedulePersist queues the record write. Nothing is written when there is
// neither text nor an image reference. It reports whether a write was queued.
func (s *PersistenceService) SchedulePersist(ctx context.Context, payload PersistPayload) (bool, error) {
	if strings.TrimSpace(payload.ExtractedText) == "" && payload.ImageURL == nil {
		utils.LogInfo("🔍 Nothing to persist, skipping", map[string]interface{}{"file_name": payload.FileName})
		return false, nil
	}

	if payload.RecordID == uuid.Nil {
		payload.RecordID = uuid.New()
	}
	if payload.ProcessedAt.IsZero() {
		payload.ProcessedAt = s.now()
	}

	if s.scheduler != nil {
		job, err := s.scheduler.Enqueue(PersistJobType, payload)
		if err == nil {
			utils.LogInfo("💾 OCR result queued for persistence", map[string]interface{}{
				"job_id":    job.ID.String(),
				"record_id": payload.RecordID.String(),
			})
			return true, nil
		}
		utils.LogWarn("⚠️ Persistence queue rejected job, writing in background", map[string]interface{}{
			"record_id": payload.RecordID.String(),
			"error":     err.Error(),
		})
	}

	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.persist(detached, payload, false); err != nil {
			utils.LogError("❌ Background persistence failed", err, map[string]interface{}{
				"record_id": payload.RecordID.String(),
				"file_name": payload.FileName,
			})
			s.reclaimPayloadObject(detached, payload)
		}
	}()
	return true, nil
}

// Wait blocks until background writes started without the queue finish
func (s *PersistenceService) Wait() {
	s.inflight.Wait()
}

// persist writes the record. On a retry an already written row counts as done.
func (s *PersistenceService) persist(ctx context.Context, payload PersistPayload, retry bool) error {
	if retry {
		if _, err := s.repo.GetByID(ctx, payload.RecordID.String()); err == nil {
			return nil
		}
	}

	metadata, err := json.Marshal(payload.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	record := &models.OCRResult{
		ID:            payload.RecordID,
		FileName:      payload.FileName,
		ExtractedText: payload.ExtractedText,
		ImageURL:      payload.ImageURL,
		ProcessedAt:   payload.ProcessedAt,
		Metadata:      datatypes.JSON(metadata),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to save OCR result: %w", err)
	}

	utils.LogInfo("✅ OCR result saved", map[string]interface{}{
		"record_id": record.ID.String(),
		"file_name": record.FileName,
	})
	return nil
}

func (s *PersistenceService) reclaimPayloadObject(ctx context.Context, payload PersistPayload) {
	if payload.ObjectPath != "" {
		s.ReclaimObject(ctx, payload.ObjectPath, models.OrphanReasonPersistFailed)
	}
}

// ReclaimObject deletes a stored object best-effort. A failed delete is
// recorded for the orphan janitor.
func (s *PersistenceService) ReclaimObject(ctx context.Context, objectPath, reason string) {
	if s.store == nil || objectPath == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	fields := map[string]interface{}{"path": objectPath, "reason": reason}

	var deleteErr error
	ok := utils.BestEffort("object cleanup", fields, func() error {
		deleteErr = s.store.Delete(ctx, objectPath)
		return deleteErr
	})
	if ok {
		return
	}

	if s.orphans == nil {
		return
	}
	lastError := "panic during cleanup"
	if deleteErr != nil {
		lastError = deleteErr.Error()
	}
	utils.BestEffort("orphan record", fields, func() error {
		return s.orphans.Record(ctx, objectPath, reason, lastError)
	})
}

// reclaimURL derives the object path from a stored URL and reclaims it
func (s *PersistenceService) reclaimURL(ctx context.Context, url, reason string) {
	if s.store == nil || url == "" {
		return
	}

	objectPath, ok := s.store.PathFromURL(url)
	if !ok {
		utils.LogWarn("⚠️ Cannot derive object path from image URL, skipping cleanup", map[string]interface{}{
			"url":    url,
			"reason": reason,
		})
		return
	}

	s.ReclaimObject(ctx, objectPath, reason)
}

// List returns all stored results, newest first
func (s *PersistenceService) List(ctx context.Context) ([]models.OCRResult, error) {
	results, err := s.repo.List(ctx)
	if err != nil {
		utils.LogError("❌ Failed to list OCR results", err, nil)
		return nil, apperror.StorageConsistency(fmt.Sprintf("Failed to fetch results from database: %v", err), err)
	}

	for i := range results {
		if !results[i].Valid() {
			return nil, apperror.StorageConsistency("Failed to process data from database.", nil)
		}
	}

	if results == nil {
		results = []models.OCRResult{}
	}
	return results, nil
}

// Update applies the supplied fields and optionally replaces the image. The
// new image is uploaded before the row changes; the old one is reclaimed only
// after the row points at the new one.
func (s *PersistenceService) Update(ctx context.Context, id string, req models.UpdateOCRResultRequest, image *ImageUpload) (*models.OCRResult, error) {
	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.ExtractedText != nil {
		updates["extracted_text"] = *req.ExtractedText
	}
	if req.FileName != nil {
		updates["file_name"] = *req.FileName
	}

	var newImage *StoredImage
	if image != nil {
		if err := validateImage(image); err != nil {
			return nil, err
		}
		newImage, err = s.uploadReplacement(ctx, *image)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = newImage.URL
	}

	if len(updates) == 0 {
		return current, nil
	}

	if err := s.repo.Update(ctx, current.ID, updates); err != nil {
		if newImage != nil {
			s.ReclaimObject(ctx, newImage.Path, models.OrphanReasonUpdateFailed)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("OCR result not found")
		}
		utils.LogError("❌ Failed to update OCR result", err, map[string]interface{}{"record_id": id})
		return nil, apperror.Internal(fmt.Sprintf("Failed to update OCR result: %v", err), err)
	}

	if newImage != nil && current.ImageURL != nil {
		s.reclaimURL(ctx, *current.ImageURL, models.OrphanReasonReplaced)
	}

	updated, err := s.repo.GetByID(ctx, current.ID.String())
	if err != nil {
		return nil, apperror.StorageConsistency("OCR result was updated but could not be read back", err)
	}

	utils.LogInfo("✅ OCR result updated", map[string]interface{}{
		"record_id":     id,
		"image_changed": newImage != nil,
	})
	return updated, nil
}

func (s *PersistenceService) uploadReplacement(ctx context.Context, image ImageUpload) (*StoredImage, error) {
	if s.store == nil {
		return nil, apperror.StorageConsistency("Image storage is not configured", nil)
	}

	result, err := s.store.UploadImage(ctx, image.Data, image.FileName, image.ContentType)
	if err != nil {
		utils.LogError("❌ Replacement image upload failed", err, map[string]interface{}{"file_name": image.FileName})
		return nil, apperror.StorageConsistency(fmt.Sprintf("Failed to upload new image: %v", err), err)
	}

	url := result.PublicURL()
	if url == "" {
		s.ReclaimObject(ctx, result.PublicID, models.OrphanReasonNoURL)
		return nil, apperror.StorageConsistency("Failed to get public URL for the new image", nil)
	}

	return &StoredImage{URL: url, Path: result.PublicID}, nil
}

// Delete removes the record and then its image
func (s *PersistenceService) Delete(ctx context.Context, id string) error {
	current, err := s.repo.GetByID(ctx, id)
	existed := true
	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		return apperror.NotFound("OCR result not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		existed = false
	case err != nil:
		return apperror.Internal(fmt.Sprintf("Failed to fetch OCR result: %v", err), err)
	}

	recordID, err := uuid.Parse(id)
	if err != nil {
		return apperror.NotFound("OCR result not found")
	}

	var imageURL string
	if current != nil {
		recordID = current.ID
		if current.ImageURL != nil {
			imageURL = *current.ImageURL
		}
	}

	rows, err := s.repo.Delete(ctx, recordID)
	if err != nil {
		// the row may be gone even though the call reported a failure
		if _, getErr := s.repo.GetByID(ctx, id); !errors.Is(getErr, gorm.ErrRecordNotFound) {
			utils.LogError("❌ Failed to delete OCR result", err, map[string]interface{}{"record_id": id})
			return apperror.Internal(fmt.Sprintf("Failed to delete OCR result: %v", err), err)
		}
		if !existed {
			return apperror.NotFound("OCR result not found")
		}
	} else if rows == 0 {
		if existed {
			utils.LogWarn("⚠️ OCR result removed concurrently", map[string]interface{}{"record_id": id})
		}
		return apperror.NotFound("OCR result not found")
	}

	if imageURL != "" {
		s.reclaimURL(ctx, imageURL, models.OrphanReasonDeleted)
	}

	utils.LogInfo("🗑️ OCR result deleted", map[string]interface{}{"record_id": id})
	return nil
}

func (s *PersistenceService) fetch(ctx context.Context, id string) (*models.OCRResult, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return nil, apperror.NotFound("OCR result not found")
		}
		return nil, apperror.Internal(fmt.Sprintf("Failed to fetch OCR result: %v", err), err)
	}
	return record, nil
}

func validateImage(image *ImageUpload) error {
	if len(image.Data) == 0 {
		return apperror.ClientInput("Empty file uploaded.")
	}
	if !isImageContentType(image.ContentType) {
		return apperror.ClientInput("Invalid file type. Please upload an image.")
	}
	if _, err := ocr.SniffImage(image.Data); err != nil {
		return apperror.ClientInputf(err, "Uploaded file is not a valid image: %v", err)
	}
	return nil
}

func isImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// PersistJobHandler runs deferred writes on the job worker
type PersistJobHandler struct {
	service *PersistenceService
}

// JobHandler returns the handler to register with the job service
func (s *PersistenceService) JobHandler() *PersistJobHandler {
	return &PersistJobHandler{service: s}
}

func (h *PersistJobHandler) GetType() string {
	return PersistJobType
}

func (h *PersistJobHandler) Handle(ctx context.Context, job *jobs.Job) error {
	payload, ok := job.Payload.(PersistPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return h.service.persist(ctx, payload, job.Attempts > 1)
}

// OnFailure reclaims the image of a record that could not be written
func (h *PersistJobHandler) OnFailure(ctx context.Context, job *jobs.Job, err error) {
	payload, ok := job.Payload.(PersistPayload)
	if !ok {
		return
	}
	utils.LogError("❌ OCR result could not be persisted", err, map[string]interface{}{
		"record_id": payload.RecordID.String(),
		"file_name": payload.FileName,
	})
	h.service.reclaimPayloadObject(ctx, payload)
}
