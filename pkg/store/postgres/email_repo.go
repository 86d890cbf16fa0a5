package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/model"
)

type DelayedEmailRepository struct {
	db *gorm.DB
}

func NewDelayedEmailRepository(db *gorm.DB) *DelayedEmailRepository {
	return &DelayedEmailRepository{db: db}
}

func (r *DelayedEmailRepository) Create(ctx context.Context, email *model.DelayedEmail) error {
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *DelayedEmailRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DelayedEmail, error) {
	var email model.DelayedEmail
	err := r.db.WithContext(ctx).First(&email, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *DelayedEmailRepository) FindActiveByApplication(ctx context.Context, applicationID uuid.UUID) (*model.DelayedEmail, error) {
	var email model.DelayedEmail
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND status IN ?", applicationID, []model.DelayedEmailStatus{model.EmailScheduled, model.EmailProcessing}).
		First(&email).Error
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *DelayedEmailRepository) Reschedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.DelayedEmail{}).
		Where("id = ? AND status = ?", id, model.EmailScheduled).
		Updates(map[string]interface{}{
			"scheduled_for": scheduledFor,
			"updated_at":    time.Now().UTC(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *DelayedEmailRepository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.DelayedEmail{}).
		Where("id = ? AND status = ?", id, model.EmailScheduled).
		Updates(map[string]interface{}{
			"status":     model.EmailCancelled,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *DelayedEmailRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]model.DelayedEmail, error) {
	if limit <= 0 {
		limit = 100
	}
	var emails []model.DelayedEmail
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", model.EmailScheduled, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *DelayedEmailRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.DelayedEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.EmailProcessing,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *DelayedEmailRepository) MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.DelayedEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.EmailSent,
			"message_id": messageID,
			"sent_at":    &sentAt,
			"updated_at": sentAt,
		}).Error
}

func (r *DelayedEmailRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.db.WithContext(ctx).Model(&model.DelayedEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.EmailFailed,
			"error_message": errorMessage,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *DelayedEmailRepository) List(ctx context.Context, status *model.DelayedEmailStatus, limit, offset int) ([]model.DelayedEmail, int64, error) {
	var emails []model.DelayedEmail
	var total int64

	query := r.db.WithContext(ctx).Model(&model.DelayedEmail{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("scheduled_for DESC").
		Limit(limit).
		Offset(offset).
		Find(&emails).Error

	return emails, total, err
}

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *model.EmailTemplate) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

func (r *TemplateRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.EmailTemplate, error) {
	var tmpl model.EmailTemplate
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&tmpl).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) GetBySlug(ctx context.Context, slug string) (*model.EmailTemplate, error) {
	var tmpl model.EmailTemplate
	err := r.db.WithContext(ctx).First(&tmpl, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.EmailTemplate, error) {
	var templates []model.EmailTemplate
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) Update(ctx context.Context, slug string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.EmailTemplate{}).
		Where("slug = ?", slug).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type EmailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

func (r *EmailLogRepository) Append(ctx context.Context, entry *model.EmailLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *EmailLogRepository) List(ctx context.Context, limit, offset int) ([]model.EmailLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []model.EmailLog
	err := r.db.WithContext(ctx).
		Order("sent_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) GetByStatusType(ctx context.Context, statusType string) (*model.NotificationSetting, error) {
	var setting model.NotificationSetting
	err := r.db.WithContext(ctx).First(&setting, "status_type = ?", statusType).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *SettingRepository) List(ctx context.Context) ([]model.NotificationSetting, error) {
	var settings []model.NotificationSetting
	err := r.db.WithContext(ctx).Order("status_type ASC").Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) Upsert(ctx context.Context, setting *model.NotificationSetting) error {
	existing, err := r.GetByStatusType(ctx, setting.StatusType)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(setting).Error
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&model.NotificationSetting{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"template_slug": setting.TemplateSlug,
			"enabled":       setting.Enabled,
			"delay_minutes": setting.DelayMinutes,
			"updated_at":    time.Now().UTC(),
		}).Error
}
