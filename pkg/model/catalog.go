package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobPosting struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title          string    `gorm:"not null"`
	Department     string    `gorm:"index"`
	Location       string
	EmploymentType string `gorm:"type:varchar(50)"`
	Description    string `gorm:"type:text"`
	Open           bool   `gorm:"default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// SalesVisit is a CRM-style log entry for a rep's visit to a client company.
type SalesVisit struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Company     string    `gorm:"not null;index"`
	ContactName string
	RepID       string    `gorm:"type:varchar(100);index"`
	VisitedAt   time.Time `gorm:"not null;index"`
	Notes       string    `gorm:"type:text"`
	Outcome     string    `gorm:"type:varchar(50)"`
	CreatedAt   time.Time
}

func (SalesVisit) TableName() string {
	return "sales_visits"
}

type TrainingVideo struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string    `gorm:"not null"`
	URL         string    `gorm:"not null"`
	Category    string    `gorm:"index"`
	DurationSec int       `gorm:"default:0"`
	Published   bool      `gorm:"default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TrainingVideo) TableName() string {
	return "training_videos"
}
