package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.JobPosting) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.JobPosting, error) {
	var job model.JobPosting
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) List(ctx context.Context, openOnly bool, limit, offset int) ([]model.JobPosting, int64, error) {
	var jobs []model.JobPosting
	var total int64

	query := r.db.WithContext(ctx).Model(&model.JobPosting{})
	if openOnly {
		query = query.Where("open = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error

	return jobs, total, err
}

func (r *JobRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.JobPosting{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.JobPosting{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(ctx context.Context, visit *model.SalesVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *VisitRepository) List(ctx context.Context, repID string, limit, offset int) ([]model.SalesVisit, int64, error) {
	var visits []model.SalesVisit
	var total int64

	query := r.db.WithContext(ctx).Model(&model.SalesVisit{})
	if repID != "" {
		query = query.Where("rep_id = ?", repID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("visited_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&visits).Error

	return visits, total, err
}

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *model.TrainingVideo) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *VideoRepository) List(ctx context.Context, category string, publishedOnly bool) ([]model.TrainingVideo, error) {
	query := r.db.WithContext(ctx).Model(&model.TrainingVideo{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var videos []model.TrainingVideo
	err := query.Order("created_at DESC").Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.TrainingVideo{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
