package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/dispatch"
	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/model"
)

// fakeRepo is an in-memory DelayedEmail table implementing both the scheduler
// and drainer repository interfaces.
type fakeRepo struct {
	mu        sync.Mutex
	rows      []*model.DelayedEmail
	createErr error
}

func (f *fakeRepo) Create(ctx context.Context, email *model.DelayedEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	// Mimic the partial unique constraint on active rows per application.
	if email.ApplicationID != nil {
		for _, row := range f.rows {
			if row.ApplicationID != nil && *row.ApplicationID == *email.ApplicationID && row.Status.Active() {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	clone := *email
	f.rows = append(f.rows, &clone)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.DelayedEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindActiveByApplication(ctx context.Context, applicationID uuid.UUID) (*model.DelayedEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ApplicationID != nil && *row.ApplicationID == applicationID && row.Status.Active() {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Reschedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id && row.Status == model.EmailScheduled {
			row.ScheduledFor = scheduledFor
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id && row.Status == model.EmailScheduled {
			row.Status = model.EmailCancelled
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.DelayedEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []model.DelayedEmail
	for _, row := range f.rows {
		if row.Status == model.EmailScheduled && !row.ScheduledFor.After(now) {
			due = append(due, *row)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (f *fakeRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return f.setStatus(id, model.EmailProcessing, "", "")
}

func (f *fakeRepo) MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = model.EmailSent
			row.MessageID = messageID
			t := sentAt
			row.SentAt = &t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return f.setStatus(id, model.EmailFailed, "", errorMessage)
}

func (f *fakeRepo) setStatus(id uuid.UUID, status model.DelayedEmailStatus, messageID, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = status
			if messageID != "" {
				row.MessageID = messageID
			}
			if errorMessage != "" {
				row.ErrorMessage = errorMessage
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) get(id uuid.UUID) *model.DelayedEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			clone := *row
			return &clone
		}
	}
	return nil
}

func (f *fakeRepo) activeCount(applicationID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, row := range f.rows {
		if row.ApplicationID != nil && *row.ApplicationID == applicationID && row.Status.Active() {
			count++
		}
	}
	return count
}

type fakeTemplates struct {
	templates map[string]*model.EmailTemplate
}

func newFakeTemplates(templates ...*model.EmailTemplate) *fakeTemplates {
	f := &fakeTemplates{templates: make(map[string]*model.EmailTemplate)}
	for _, tmpl := range templates {
		f.templates[tmpl.Slug] = tmpl
	}
	return f
}

func (f *fakeTemplates) GetActiveBySlug(ctx context.Context, slug string) (*model.EmailTemplate, error) {
	tmpl, ok := f.templates[slug]
	if !ok || !tmpl.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return tmpl, nil
}

// fakeDispatcher records sends and fails for recipients listed in failFor.
type fakeDispatcher struct {
	mu      sync.Mutex
	sent    []dispatch.Email
	failFor map[string]error
	nextID  int
}

func (f *fakeDispatcher) Send(ctx context.Context, email dispatch.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[email.To]; ok {
		return "", err
	}
	f.sent = append(f.sent, email)
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

type fakeSendLog struct {
	mu      sync.Mutex
	entries []*model.EmailLog
}

func (f *fakeSendLog) Append(ctx context.Context, entry *model.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type publishedEvent struct {
	channel string
	event   eventbus.Event
}

// fakeBus records queue events published for the live feed.
type fakeBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeBus) Publish(ctx context.Context, channel string, event eventbus.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{channel: channel, event: event})
	return nil
}

func (f *fakeBus) queueEvents(t *testing.T) []eventbus.QueueEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []eventbus.QueueEvent
	for _, published := range f.events {
		if published.channel != eventbus.ChannelQueue {
			t.Fatalf("event published on unexpected channel %q", published.channel)
		}
		var change eventbus.QueueEvent
		if err := json.Unmarshal(published.event.Data, &change); err != nil {
			t.Fatalf("failed to decode queue event: %v", err)
		}
		out = append(out, change)
	}
	return out
}

// fakeClock advances manually so tests can cross scheduled_for boundaries.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var hiredTemplate = &model.EmailTemplate{
	ID:      uuid.New(),
	Slug:    "hired",
	Name:    "Offer notification",
	Subject: "Congratulations {{candidateName}}!",
	Body:    "<p>Dear {{candidateName}}, you are hired for {{position}}.</p>",
	Active:  true,
}
