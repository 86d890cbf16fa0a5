package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type DelayedEmailStatus string

const (
	EmailScheduled  DelayedEmailStatus = "scheduled"
	EmailProcessing DelayedEmailStatus = "processing"
	EmailSent       DelayedEmailStatus = "sent"
	EmailFailed     DelayedEmailStatus = "failed"
	EmailCancelled  DelayedEmailStatus = "cancelled"
)

// Active means not yet terminal: the row can still be picked up by the drainer.
func (s DelayedEmailStatus) Active() bool {
	return s == EmailScheduled || s == EmailProcessing
}

type DelayedEmail struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TemplateSlug string    `gorm:"not null;index"`
	Recipient    string    `gorm:"not null"`
	Subject      string    `gorm:"not null"`
	Body         string    `gorm:"type:text;not null"`
	// Raw variable map kept for audit; the rendered subject/body above are what
	// actually gets sent.
	Variables    JSONB     `gorm:"type:jsonb;default:'{}'"`
	ScheduledFor time.Time `gorm:"not null;index"`
	// Partial unique index: at most one scheduled/processing row per application.
	// A racing insert hits the constraint instead of creating a duplicate send.
	ApplicationID *uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_delayed_emails_active,where:status IN ('scheduled','processing')"`
	StatusType    string             `gorm:"type:varchar(50)"`
	Status        DelayedEmailStatus `gorm:"type:varchar(20);default:'scheduled';index"`
	MessageID     string
	ErrorMessage  string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (DelayedEmail) TableName() string {
	return "delayed_emails"
}

type EmailTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Slug      string         `gorm:"not null;uniqueIndex"`
	Name      string         `gorm:"not null"`
	Subject   string         `gorm:"not null"`
	Body      string         `gorm:"type:text;not null"`
	Variables pq.StringArray `gorm:"type:text[]"`
	Active    bool           `gorm:"default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

type EmailLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DelayedEmailID *uuid.UUID `gorm:"type:uuid;index"`
	Recipient      string     `gorm:"not null"`
	Subject        string
	MessageID      string
	SentAt         time.Time `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}

// NotificationSetting controls whether a status change schedules a notification
// for the matching status type, and how far in the future it lands.
type NotificationSetting struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StatusType   string    `gorm:"not null;uniqueIndex"`
	TemplateSlug string    `gorm:"not null"`
	Enabled      bool      `gorm:"default:true"`
	DelayMinutes int       `gorm:"default:60"`
	UpdatedAt    time.Time
}

func (NotificationSetting) TableName() string {
	return "notification_settings"
}
