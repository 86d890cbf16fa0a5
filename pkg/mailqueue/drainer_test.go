package mailqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/hireflow/pkg/model"
)

func newTestDrainer(repo *fakeRepo, sendLog *fakeSendLog, dispatcher *fakeDispatcher, clock *fakeClock) *Drainer {
	d := NewDrainer(repo, sendLog, dispatcher, nil, zap.NewNop(), time.Minute, 100)
	d.now = clock.Now
	return d
}

func scheduleAt(t *testing.T, s *Scheduler, recipient string, at time.Time, appID *uuid.UUID) uuid.UUID {
	t.Helper()
	id, err := s.Schedule(context.Background(), ScheduleRequest{
		TemplateSlug:  "hired",
		Recipient:     recipient,
		Variables:     map[string]interface{}{"candidateName": "Ada", "position": "Engineer"},
		ScheduledFor:  at,
		ApplicationID: appID,
	})
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	return id
}

func TestDrainBeforeDueTimeIsNoop(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	d := newTestDrainer(repo, &fakeSendLog{}, &fakeDispatcher{}, clock)

	id := scheduleAt(t, s, "ada@example.com", clock.Now().Add(time.Hour), nil)

	result := d.Drain(context.Background())
	if result.Processed != 0 {
		t.Fatalf("expected 0 processed before due time, got %d", result.Processed)
	}
	if repo.get(id).Status != model.EmailScheduled {
		t.Fatal("row should remain scheduled")
	}
}

func TestDrainSendsDueRow(t *testing.T) {
	repo := &fakeRepo{}
	sendLog := &fakeSendLog{}
	dispatcher := &fakeDispatcher{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	d := newTestDrainer(repo, sendLog, dispatcher, clock)

	appID := uuid.New()
	id := scheduleAt(t, s, "ada@example.com", clock.Now().Add(time.Hour), &appID)

	clock.Advance(time.Hour + time.Minute)

	result := d.Drain(context.Background())
	if result.Processed != 1 || result.Sent != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	row := repo.get(id)
	if row.Status != model.EmailSent {
		t.Fatalf("expected sent status, got %q", row.Status)
	}
	if row.MessageID == "" {
		t.Fatal("expected a provider message id")
	}
	if row.SentAt == nil {
		t.Fatal("expected sent_at to be recorded")
	}

	if len(sendLog.entries) != 1 {
		t.Fatalf("expected 1 send-log entry, got %d", len(sendLog.entries))
	}
	if sendLog.entries[0].MessageID != row.MessageID {
		t.Fatal("send-log message id mismatch")
	}

	if len(dispatcher.sent) != 1 || dispatcher.sent[0].To != "ada@example.com" {
		t.Fatalf("dispatcher saw %+v", dispatcher.sent)
	}
}

func TestDrainSkipsCancelledRow(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	dispatcher := &fakeDispatcher{}
	d := newTestDrainer(repo, &fakeSendLog{}, dispatcher, clock)

	id := scheduleAt(t, s, "ada@example.com", clock.Now().Add(time.Hour), nil)
	if err := s.Cancel(context.Background(), id); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	clock.Advance(2 * time.Hour)

	result := d.Drain(context.Background())
	if result.Processed != 0 {
		t.Fatalf("cancelled row must not be processed, got %+v", result)
	}
	if repo.get(id).Status != model.EmailCancelled {
		t.Fatal("cancelled row must stay cancelled")
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("cancelled row must never be sent")
	}
}

func TestDrainIsolatesPerRowFailure(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	dispatcher := &fakeDispatcher{
		failFor: map[string]error{"broken@example.com": errors.New("provider returned 500")},
	}
	d := newTestDrainer(repo, &fakeSendLog{}, dispatcher, clock)

	first := scheduleAt(t, s, "first@example.com", clock.Now().Add(time.Minute), nil)
	second := scheduleAt(t, s, "broken@example.com", clock.Now().Add(time.Minute), nil)
	third := scheduleAt(t, s, "third@example.com", clock.Now().Add(time.Minute), nil)

	clock.Advance(5 * time.Minute)

	result := d.Drain(context.Background())
	if result.Processed != 3 || result.Sent != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	if repo.get(first).Status != model.EmailSent {
		t.Fatal("first row should be sent despite second failing")
	}
	if repo.get(third).Status != model.EmailSent {
		t.Fatal("third row should be sent despite second failing")
	}

	failed := repo.get(second)
	if failed.Status != model.EmailFailed {
		t.Fatalf("expected failed status, got %q", failed.Status)
	}
	if failed.ErrorMessage != "provider returned 500" {
		t.Fatalf("error text not recorded: %q", failed.ErrorMessage)
	}
}

func TestDrainDoesNotRetryFailedRow(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	dispatcher := &fakeDispatcher{
		failFor: map[string]error{"broken@example.com": errors.New("timeout")},
	}
	d := newTestDrainer(repo, &fakeSendLog{}, dispatcher, clock)

	scheduleAt(t, s, "broken@example.com", clock.Now().Add(time.Minute), nil)
	clock.Advance(5 * time.Minute)

	if result := d.Drain(context.Background()); result.Failed != 1 {
		t.Fatalf("expected 1 failed, got %+v", result)
	}

	// The failed row stays failed; the next tick must not pick it up.
	clock.Advance(10 * time.Minute)
	if result := d.Drain(context.Background()); result.Processed != 0 {
		t.Fatalf("failed row was retried: %+v", result)
	}
}

func TestDrainEmptyQueue(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Now())
	d := newTestDrainer(repo, &fakeSendLog{}, &fakeDispatcher{}, clock)

	result := d.Drain(context.Background())
	if result.Processed != 0 || result.Sent != 0 || result.Failed != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	clock := newFakeClock(time.Now())
	d := NewDrainer(repo, &fakeSendLog{}, &fakeDispatcher{}, nil, zap.NewNop(), 10*time.Millisecond, 10)
	d.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestDrainPublishesQueueEvents(t *testing.T) {
	repo := &fakeRepo{}
	bus := &fakeBus{}
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestScheduler(repo, clock)
	dispatcher := &fakeDispatcher{
		failFor: map[string]error{"broken@example.com": errors.New("provider returned 500")},
	}
	d := NewDrainer(repo, &fakeSendLog{}, dispatcher, bus, zap.NewNop(), time.Minute, 100)
	d.now = clock.Now

	sentID := scheduleAt(t, s, "ada@example.com", clock.Now().Add(time.Minute), nil)
	failedID := scheduleAt(t, s, "broken@example.com", clock.Now().Add(time.Minute), nil)

	clock.Advance(5 * time.Minute)
	d.Drain(context.Background())

	events := bus.queueEvents(t)
	if len(events) != 2 {
		t.Fatalf("expected 2 queue events, got %d", len(events))
	}
	if events[0].EmailID != sentID.String() || events[0].Status != string(model.EmailSent) {
		t.Fatalf("unexpected sent event %+v", events[0])
	}
	if events[1].EmailID != failedID.String() || events[1].Status != string(model.EmailFailed) {
		t.Fatalf("unexpected failed event %+v", events[1])
	}
	if events[1].Error != "provider returned 500" {
		t.Fatalf("failed event missing error text: %+v", events[1])
	}
}
