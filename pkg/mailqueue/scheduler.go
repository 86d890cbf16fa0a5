// Package mailqueue implements the delayed-email queue: scheduling rows for
// future dispatch and draining due rows through an email provider.
package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/metrics"
	"github.com/hireflow/hireflow/pkg/model"
	"github.com/hireflow/hireflow/pkg/template"
)

var (
	ErrAlreadyScheduled = errors.New("an active email is already scheduled for this application")
	ErrScheduledInPast  = errors.New("scheduled_for must be in the future")
	ErrTemplateNotFound = errors.New("email template not found or inactive")
	ErrNotScheduled     = errors.New("email is not in scheduled state")
)

type Repository interface {
	Create(ctx context.Context, email *model.DelayedEmail) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DelayedEmail, error)
	// FindActiveByApplication returns the scheduled/processing row for the
	// application, or gorm.ErrRecordNotFound when there is none.
	FindActiveByApplication(ctx context.Context, applicationID uuid.UUID) (*model.DelayedEmail, error)
	// Reschedule and Cancel only touch rows still in scheduled state and
	// report whether a row was updated.
	Reschedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
}

type TemplateStore interface {
	// GetActiveBySlug returns gorm.ErrRecordNotFound for unknown or inactive
	// templates.
	GetActiveBySlug(ctx context.Context, slug string) (*model.EmailTemplate, error)
}

// EventSink receives queue state transitions for the live admin feed.
type EventSink interface {
	Publish(ctx context.Context, channel string, event eventbus.Event) error
}

func publishQueueEvent(ctx context.Context, bus EventSink, email *model.DelayedEmail, status model.DelayedEmailStatus, errText string) {
	if bus == nil {
		return
	}
	change := eventbus.QueueEvent{
		EmailID: email.ID.String(),
		Status:  string(status),
		Error:   errText,
	}
	if email.ApplicationID != nil {
		change.ApplicationID = email.ApplicationID.String()
	}
	if event, err := eventbus.NewEvent("queue_changed", change); err == nil {
		_ = bus.Publish(ctx, eventbus.ChannelQueue, event)
	}
}

type ScheduleRequest struct {
	TemplateSlug  string
	Recipient     string
	Variables     map[string]interface{}
	ScheduledFor  time.Time
	ApplicationID *uuid.UUID
	StatusType    string
}

type Scheduler struct {
	repo      Repository
	templates TemplateStore
	bus       EventSink
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduler(repo Repository, templates TemplateStore, bus EventSink, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		repo:      repo,
		templates: templates,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Schedule renders the template and inserts a scheduled row. When the request
// carries an application id, at most one active row may exist for it: a
// pre-insert lookup catches the common case and the partial unique constraint
// turns the remaining race into ErrAlreadyScheduled instead of a duplicate.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (uuid.UUID, error) {
	if !req.ScheduledFor.After(s.now()) {
		return uuid.Nil, ErrScheduledInPast
	}

	tmpl, err := s.templates.GetActiveBySlug(ctx, req.TemplateSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, req.TemplateSlug)
		}
		return uuid.Nil, fmt.Errorf("load template: %w", err)
	}

	if req.ApplicationID != nil {
		_, err := s.repo.FindActiveByApplication(ctx, *req.ApplicationID)
		if err == nil {
			return uuid.Nil, ErrAlreadyScheduled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("check active email: %w", err)
		}
	}

	vars := template.NormalizeVariables(req.Variables)
	subject, body := template.RenderSubjectBody(tmpl.Subject, tmpl.Body, vars)

	email := &model.DelayedEmail{
		ID:            uuid.New(),
		TemplateSlug:  tmpl.Slug,
		Recipient:     req.Recipient,
		Subject:       subject,
		Body:          body,
		Variables:     model.JSONB(vars),
		ScheduledFor:  req.ScheduledFor.UTC(),
		ApplicationID: req.ApplicationID,
		StatusType:    req.StatusType,
		Status:        model.EmailScheduled,
	}

	if err := s.repo.Create(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, ErrAlreadyScheduled
		}
		return uuid.Nil, fmt.Errorf("insert delayed email: %w", err)
	}

	metrics.EmailsScheduledTotal.Inc()
	publishQueueEvent(ctx, s.bus, email, model.EmailScheduled, "")
	s.logger.Info("email scheduled",
		zap.String("id", email.ID.String()),
		zap.String("template", email.TemplateSlug),
		zap.Time("scheduled_for", email.ScheduledFor),
	)

	return email.ID, nil
}

// Reschedule moves a still-scheduled row to a new target time.
func (s *Scheduler) Reschedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) error {
	if !scheduledFor.After(s.now()) {
		return ErrScheduledInPast
	}

	updated, err := s.repo.Reschedule(ctx, id, scheduledFor.UTC())
	if err != nil {
		return fmt.Errorf("reschedule email: %w", err)
	}
	if !updated {
		return ErrNotScheduled
	}
	if s.bus != nil {
		if row, err := s.repo.GetByID(ctx, id); err == nil {
			publishQueueEvent(ctx, s.bus, row, model.EmailScheduled, "")
		}
	}
	return nil
}

// Cancel marks a still-scheduled row cancelled. Terminal rows are never
// resurrected: cancelling anything but a scheduled row fails with
// ErrNotScheduled.
func (s *Scheduler) Cancel(ctx context.Context, id uuid.UUID) error {
	updated, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel email: %w", err)
	}
	if !updated {
		return ErrNotScheduled
	}
	if s.bus != nil {
		if row, err := s.repo.GetByID(ctx, id); err == nil {
			publishQueueEvent(ctx, s.bus, row, model.EmailCancelled, "")
		}
	}
	return nil
}
