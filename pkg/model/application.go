package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ApplicationStatus string

type Application struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID       *uuid.UUID  `gorm:"type:uuid;index"`
	Job         *JobPosting `gorm:"foreignKey:JobID"`
	FullName    string      `gorm:"not null"`
	Email       string      `gorm:"not null;index"`
	Phone       string
	Position    string `gorm:"not null"`
	CoverLetter string `gorm:"type:text"`
	// Object-storage keys for the uploaded resume and any supporting documents.
	Documents pq.StringArray       `gorm:"type:text[]"`
	Referred  bool                 `gorm:"default:false"`
	Status    ApplicationStatus    `gorm:"type:varchar(50);default:'application_submitted';index"`
	History   []StatusHistoryEntry `gorm:"foreignKey:ApplicationID"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type StatusHistoryEntry struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ApplicationID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_history_application_time"`
	PreviousStatus ApplicationStatus `gorm:"type:varchar(50)"`
	NewStatus      ApplicationStatus `gorm:"type:varchar(50);not null"`
	Note           string            `gorm:"type:text"`
	// Nil for system-triggered changes.
	ChangedBy *string   `gorm:"type:varchar(100)"`
	Valid     bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_history_application_time"`
}

func (StatusHistoryEntry) TableName() string {
	return "status_history"
}
