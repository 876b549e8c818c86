package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrphanRepo interface {
	Record(ctx context.Context, path, reason, lastError string) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]models.OrphanedObject, error)
	MarkAttempt(ctx context.Context, id uuid.UUID, lastError string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orphanRepo struct {
	db *gorm.DB
}

func NewOrphanRepo(db *gorm.DB) OrphanRepo {
	return &orphanRepo{db: db}
}

// Record inserts an orphan or refreshes the error of an existing one
func (r *orphanRepo) Record(ctx context.Context, path, reason, lastError string) error {
	orphan := &models.OrphanedObject{
		Path:      path,
		Reason:    reason,
		LastError: lastError,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_error", "updated_at"}),
	}).Create(orphan).Error
}

func (r *orphanRepo) ListPending(ctx context.Context, maxAttempts, limit int) ([]models.OrphanedObject, error) {
	var orphans []models.OrphanedObject

	query := r.db.WithContext(ctx).Order("created_at ASC")
	if maxAttempts > 0 {
		query = query.Where("attempts < ?", maxAttempts)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&orphans).Error
	return orphans, err
}

func (r *orphanRepo) MarkAttempt(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).Model(&models.OrphanedObject{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}

func (r *orphanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrphanedObject{}, "id = ?", id).Error
}
