package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/mailqueue"
	"github.com/hireflow/hireflow/pkg/metrics"
	"github.com/hireflow/hireflow/pkg/model"
)

var (
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrApplicationNotFound = errors.New("application not found")
)

type ApplicationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	// UpdateStatus moves the application to status and appends the history
	// entry in the same transaction, so a failed append never leaves a status
	// change without its audit row.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, entry *model.StatusHistoryEntry) error
}

type HistoryStore interface {
	ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]model.StatusHistoryEntry, error)
}

type SettingStore interface {
	GetByStatusType(ctx context.Context, statusType string) (*model.NotificationSetting, error)
}

// Notifier is the scheduling side of the delayed-email queue. Conflicts from
// the notifier never fail a status change.
type Notifier interface {
	Schedule(ctx context.Context, req mailqueue.ScheduleRequest) (uuid.UUID, error)
}

type Service struct {
	apps     ApplicationStore
	history  HistoryStore
	settings SettingStore
	notifier Notifier
	bus      *eventbus.Bus
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(apps ApplicationStore, history HistoryStore, settings SettingStore, notifier Notifier, bus *eventbus.Bus, logger *zap.Logger) *Service {
	return &Service{
		apps:     apps,
		history:  history,
		settings: settings,
		notifier: notifier,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyStatusChange moves an application to newStatus and appends exactly one
// history entry. Any-to-any transitions are accepted; the admin UI decides
// which moves to offer. actorID is nil for system-triggered changes.
func (s *Service) ApplyStatusChange(ctx context.Context, applicationID uuid.UUID, newStatus, note string, actorID *string) (*model.StatusHistoryEntry, error) {
	canonical, ok := Canonicalize(newStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("load application: %w", err)
	}

	entry := &model.StatusHistoryEntry{
		ApplicationID:  applicationID,
		PreviousStatus: app.Status,
		NewStatus:      canonical,
		Note:           note,
		ChangedBy:      actorID,
		Valid:          true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.apps.UpdateStatus(ctx, applicationID, canonical, entry); err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	metrics.StatusChangesTotal.WithLabelValues(string(canonical)).Inc()

	s.maybeScheduleNotification(ctx, app, canonical)
	s.publishChange(ctx, app.ID, app.Status, canonical)

	return entry, nil
}

// History returns the application's transition log, newest first.
func (s *Service) History(ctx context.Context, applicationID uuid.UUID, limit int) ([]model.StatusHistoryEntry, error) {
	return s.history.ListByApplication(ctx, applicationID, limit)
}

func (s *Service) maybeScheduleNotification(ctx context.Context, app *model.Application, newStatus model.ApplicationStatus) {
	if s.notifier == nil || !Notifiable(newStatus) {
		return
	}

	key := string(NotifyKey(newStatus))
	setting, err := s.settings.GetByStatusType(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to load notification setting", zap.Error(err), zap.String("status_type", key))
		}
		return
	}
	if !setting.Enabled {
		return
	}

	delay := time.Duration(setting.DelayMinutes) * time.Minute
	if delay <= 0 {
		delay = time.Minute
	}

	appID := app.ID
	_, err = s.notifier.Schedule(ctx, mailqueue.ScheduleRequest{
		TemplateSlug: setting.TemplateSlug,
		Recipient:    app.Email,
		Variables: map[string]interface{}{
			"candidateName": app.FullName,
			"position":      app.Position,
			"status":        string(newStatus),
		},
		ScheduledFor:  s.now().Add(delay),
		ApplicationID: &appID,
		StatusType:    key,
	})
	if err != nil {
		if errors.Is(err, mailqueue.ErrAlreadyScheduled) {
			s.logger.Info("notification already scheduled for application",
				zap.String("application_id", app.ID.String()),
				zap.String("status_type", key),
			)
			return
		}
		s.logger.Warn("failed to schedule status notification",
			zap.Error(err),
			zap.String("application_id", app.ID.String()),
			zap.String("status_type", key),
		)
	}
}

func (s *Service) publishChange(ctx context.Context, applicationID uuid.UUID, previous, current model.ApplicationStatus) {
	if s.bus == nil {
		return
	}
	change := eventbus.StatusChangeEvent{
		ApplicationID:  applicationID.String(),
		PreviousStatus: string(previous),
		NewStatus:      string(current),
	}
	if event, err := eventbus.NewEvent("status_changed", change); err == nil {
		_ = s.bus.Publish(ctx, eventbus.ChannelApplications, event)
	}
}
