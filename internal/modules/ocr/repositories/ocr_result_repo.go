package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidID is returned for ids that are not UUIDs
var ErrInvalidID = errors.New("invalid OCR result ID")

type OCRResultRepo interface {
	Create(ctx context.Context, result *models.OCRResult) error
	GetByID(ctx context.Context, id string) (*models.OCRResult, error)
	List(ctx context.Context) ([]models.OCRResult, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error) // rows affected
}

type ocrResultRepo struct {
	db *gorm.DB
}

func NewOCRResultRepo(db *gorm.DB) OCRResultRepo {
	return &ocrResultRepo{db: db}
}

func (r *ocrResultRepo) Create(ctx context.Context, result *models.OCRResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *ocrResultRepo) GetByID(ctx context.Context, id string) (*models.OCRResult, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	var result models.OCRResult
	err = r.db.WithContext(ctx).First(&result, "id = ?", uid).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ocrResultRepo) List(ctx context.Context) ([]models.OCRResult, error) {
	var results []models.OCRResult
	err := r.db.WithContext(ctx).
		Order("processed_at DESC").
		Find(&results).Error
	return results, err
}

// Update applies a partial column map; a missing row yields gorm.ErrRecordNotFound
func (r *ocrResultRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.OCRResult{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ocrResultRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.OCRResult{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
