package mailqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/hireflow/pkg/dispatch"
	"github.com/hireflow/hireflow/pkg/metrics"
	"github.com/hireflow/hireflow/pkg/model"
)

type DrainRepository interface {
	// ListDue returns scheduled rows with scheduled_for <= now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.DelayedEmail, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

type SendLog interface {
	Append(ctx context.Context, entry *model.EmailLog) error
}

type DrainResult struct {
	Processed int
	Sent      int
	Failed    int
	Rows      []RowResult
}

type RowResult struct {
	ID        uuid.UUID
	Status    model.DelayedEmailStatus
	MessageID string
	Error     string
}

// Drainer promotes due rows from scheduled through processing to a terminal
// sent/failed state. It holds no state between ticks; the timer source is
// assumed not to overlap invocations.
type Drainer struct {
	repo         DrainRepository
	sendLog      SendLog
	dispatcher   dispatch.Dispatcher
	bus          EventSink
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
}

func NewDrainer(repo DrainRepository, sendLog SendLog, dispatcher dispatch.Dispatcher, bus EventSink, logger *zap.Logger, pollInterval time.Duration, batchSize int) *Drainer {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Drainer{
		repo:         repo,
		sendLog:      sendLog,
		dispatcher:   dispatcher,
		bus:          bus,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		now:          time.Now,
	}
}

func (d *Drainer) Run(ctx context.Context) error {
	d.logger.Info("mail drainer starting",
		zap.Duration("poll_interval", d.pollInterval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.Drain(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("mail drainer shutting down")
			return ctx.Err()
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain runs one tick: select due rows and dispatch each sequentially. Rows
// are processed one at a time so a single failure never aborts the rest and
// the provider is not hit with a burst.
func (d *Drainer) Drain(ctx context.Context) DrainResult {
	started := d.now()
	defer func() {
		metrics.DrainDuration.Observe(d.now().Sub(started).Seconds())
	}()

	due, err := d.repo.ListDue(ctx, d.now().UTC(), d.batchSize)
	if err != nil {
		d.logger.Warn("failed to list due emails", zap.Error(err))
		return DrainResult{}
	}

	metrics.QueueDepth.Set(float64(len(due)))

	result := DrainResult{}
	if len(due) == 0 {
		return result
	}

	for _, email := range due {
		row := d.process(ctx, email)
		result.Rows = append(result.Rows, row)
		result.Processed++
		switch row.Status {
		case model.EmailSent:
			result.Sent++
		case model.EmailFailed:
			result.Failed++
		}
	}

	d.logger.Info("drain tick finished",
		zap.Int("processed", result.Processed),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)

	return result
}

func (d *Drainer) process(ctx context.Context, email model.DelayedEmail) RowResult {
	if err := d.repo.MarkProcessing(ctx, email.ID); err != nil {
		d.logger.Warn("failed to mark email processing", zap.Error(err), zap.String("id", email.ID.String()))
		return RowResult{ID: email.ID, Status: email.Status, Error: err.Error()}
	}

	messageID, err := d.dispatcher.Send(ctx, dispatch.Email{
		To:       email.Recipient,
		Subject:  email.Subject,
		HTMLBody: email.Body,
	})
	if err != nil {
		// No automatic retry: the row stays failed until an operator steps in.
		if markErr := d.repo.MarkFailed(ctx, email.ID, err.Error()); markErr != nil {
			d.logger.Warn("failed to mark email failed", zap.Error(markErr), zap.String("id", email.ID.String()))
		}
		metrics.EmailsFailedTotal.Inc()
		publishQueueEvent(ctx, d.bus, &email, model.EmailFailed, err.Error())
		d.logger.Warn("email dispatch failed", zap.Error(err), zap.String("id", email.ID.String()))
		return RowResult{ID: email.ID, Status: model.EmailFailed, Error: err.Error()}
	}

	sentAt := d.now().UTC()
	if err := d.repo.MarkSent(ctx, email.ID, messageID, sentAt); err != nil {
		d.logger.Warn("failed to mark email sent", zap.Error(err), zap.String("id", email.ID.String()))
		return RowResult{ID: email.ID, Status: model.EmailProcessing, MessageID: messageID, Error: err.Error()}
	}

	if d.sendLog != nil {
		id := email.ID
		logEntry := &model.EmailLog{
			DelayedEmailID: &id,
			Recipient:      email.Recipient,
			Subject:        email.Subject,
			MessageID:      messageID,
			SentAt:         sentAt,
		}
		if err := d.sendLog.Append(ctx, logEntry); err != nil {
			d.logger.Warn("failed to append email log", zap.Error(err), zap.String("id", email.ID.String()))
		}
	}

	metrics.EmailsSentTotal.Inc()
	publishQueueEvent(ctx, d.bus, &email, model.EmailSent, "")
	return RowResult{ID: email.ID, Status: model.EmailSent, MessageID: messageID}
}
