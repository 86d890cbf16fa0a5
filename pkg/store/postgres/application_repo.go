package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/model"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateStatus moves the application and appends the history entry in one
// transaction: a failed append rolls the status back.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, entry *model.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Application{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": entry.CreatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
}

func (r *ApplicationRepository) List(ctx context.Context, status *model.ApplicationStatus, jobID *uuid.UUID, limit, offset int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Application{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if jobID != nil {
		query = query.Where("job_id = ?", *jobID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error

	return apps, total, err
}

// Delete soft-deletes the application. History rows stay behind as the
// append-only audit trail.
func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Application{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]model.StatusHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.StatusHistoryEntry
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND valid = ?", applicationID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
