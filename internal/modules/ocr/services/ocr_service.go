package services

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/apperror"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
)

// Recognizer runs the OCR engine on a preprocessed bitmap
type Recognizer interface {
	Recognize(ctx context.Context, bitmap *image.Gray, cfg ocr.EngineConfig) ([]ocr.TokenRow, error)
	GetProviderName() string
}

// UploadInput is one OCR request
type UploadInput struct {
	Image      ImageUpload
	Languages  []string
	SaveResult bool
	Category   string
}

// OCRService runs the upload → preprocess → recognize → assemble pipeline
type OCRService struct {
	recognizer     Recognizer
	registry       *ocr.Registry
	persistence    *PersistenceService
	minConfidence  float64
	tessdataPrefix string
}

// OCRServiceOptions tunes the pipeline
type OCRServiceOptions struct {
	MinConfidence  float64
	TessdataPrefix string
}

// NewOCRService creates the orchestrator. persistence may be nil, in which
// case save requests are ignored.
func NewOCRService(recognizer Recognizer, registry *ocr.Registry, persistence *PersistenceService, opts OCRServiceOptions) *OCRService {
	return &OCRService{
		recognizer:     recognizer,
		registry:       registry,
		persistence:    persistence,
		minConfidence:  opts.MinConfidence,
		tessdataPrefix: opts.TessdataPrefix,
	}
}

// EngineName returns the name of the OCR engine in use
func (s *OCRService) EngineName() string {
	return s.recognizer.GetProviderName()
}

// PerformOCR processes one uploaded image
func (s *OCRService) PerformOCR(ctx context.Context, in UploadInput) (*ocr.OCRResult, error) {
	fields := map[string]interface{}{"file_name": in.Image.FileName}

	if !isImageContentType(in.Image.ContentType) {
		return nil, apperror.ClientInput("Invalid file type. Please upload an image.")
	}
	if len(in.Image.Data) == 0 {
		return nil, apperror.ClientInput("Empty file uploaded.")
	}

	languages := ocr.NormalizeLanguages(in.Languages)
	category := s.registry.Lookup(in.Category)
	cfg := ocr.EngineConfig{Languages: languages, Mode: category.Mode}

	save := in.SaveResult && s.persistence != nil
	var stored *StoredImage
	if save {
		stored = s.persistence.StoreImage(ctx, in.Image)
	}

	result, err := s.recognize(ctx, in.Image.Data, category, cfg)
	if err != nil {
		if stored != nil {
			s.persistence.ReclaimObject(ctx, stored.Path, models.OrphanReasonPipelineFailed)
		}
		utils.LogError("❌ OCR processing failed", err, fields)
		return nil, err
	}

	fields["words"] = len(result.Words)
	fields["category"] = category.Name
	utils.LogInfo("🔍 OCR completed", fields)

	if save {
		payload := PersistPayload{
			FileName:      in.Image.FileName,
			ExtractedText: result.FullText,
			Metadata: models.RecordMetadata{
				Languages: languages,
				Category:  category.Name,
				Mode:      int(category.Mode),
				WordCount: len(result.Words),
				Engine:    s.recognizer.GetProviderName(),
			},
		}
		if stored != nil {
			url := stored.URL
			payload.ImageURL = &url
			payload.ObjectPath = stored.Path
		}

		if _, err := s.persistence.SchedulePersist(ctx, payload); err != nil {
			// the response is still valid; only the write failed
			utils.LogError("❌ Failed to persist OCR result", err, fields)
		}
	}

	return result, nil
}

func (s *OCRService) recognize(ctx context.Context, data []byte, category ocr.Category, cfg ocr.EngineConfig) (*ocr.OCRResult, error) {
	bitmap, err := ocr.Preprocess(data, category.Transform)
	if err != nil {
		var decodeErr *ocr.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, apperror.ClientInputf(err, "Image preprocessing failed: %v", decodeErr.Err)
		}
		return nil, apperror.Internal(fmt.Sprintf("An unexpected error occurred during OCR processing: %v", err), err)
	}

	rows, err := s.recognizer.Recognize(ctx, bitmap, cfg)
	if err != nil {
		return nil, s.mapEngineError(err, cfg)
	}

	words, fullText := ocr.Assemble(rows, s.minConfidence)
	bounds := bitmap.Bounds()

	return &ocr.OCRResult{
		ProcessedImageWidth:  bounds.Dx(),
		ProcessedImageHeight: bounds.Dy(),
		Words:                words,
		FullText:             fullText,
	}, nil
}

func (s *OCRService) mapEngineError(err error, cfg ocr.EngineConfig) error {
	var langErr *ocr.LanguageDataError
	var engineErr *ocr.EngineError

	switch {
	case errors.Is(err, ocr.ErrEngineNotInstalled):
		return apperror.EngineConfiguration("Tesseract executable not found. Check installation and PATH/TESSDATA_PREFIX.", err)

	case errors.As(err, &langErr):
		language := langErr.Language
		if language == "" {
			language = cfg.LanguageString()
		}
		prefix := langErr.TessdataPrefix
		if prefix == "" {
			prefix = s.tessdataPrefix
		}
		if prefix == "" {
			prefix = "not set"
		}
		return apperror.EngineConfiguration(fmt.Sprintf(
			"Tesseract language data ('%s.traineddata') not found. Ensure it's installed and in TESSDATA_PREFIX (%s).",
			language, prefix,
		), err)

	case errors.As(err, &engineErr):
		return apperror.Internal(fmt.Sprintf("OCR engine failed for languages '%s': %s", engineErr.Languages, engineErr.Message), err)

	default:
		return apperror.Internal(fmt.Sprintf("An unexpected error occurred during OCR processing: %v", err), err)
	}
}
