package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garnizeh/jobboard/internal/jobs"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// JobType is the queue job type carrying an Event.
const JobType = "notify.deliver"

// Direct renders and stores notifications synchronously.
type Direct struct {
	renderer *Renderer
	store    repository.NotificationRepo
}

func NewDirect(renderer *Renderer, store repository.NotificationRepo) *Direct {
	return &Direct{renderer: renderer, store: store}
}

func (d *Direct) Publish(ctx context.Context, e Event) error {
	return deliver(ctx, d.renderer, d.store, e)
}

// Outbox enqueues events on the persistent job queue. Delivery happens in the
// worker pool through Handler.
type Outbox struct {
	queue       *jobs.Repository
	maxAttempts int
}

func NewOutbox(queue *jobs.Repository, maxAttempts int) *Outbox {
	return &Outbox{queue: queue, maxAttempts: maxAttempts}
}

func (o *Outbox) Publish(ctx context.Context, e Event) error {
	if _, err := jobs.Enqueue(ctx, o.queue, JobType, e, 0, o.maxAttempts); err != nil {
		return fmt.Errorf("enqueue %s: %w", e.Type, err)
	}
	return nil
}

// Handler returns the worker pool handler that delivers queued events.
func Handler(renderer *Renderer, store repository.NotificationRepo, logger *slog.Logger) jobs.Handler {
	return func(ctx context.Context, j *jobs.Job) error {
		e, err := jobs.Decode[Event](j)
		if err != nil {
			return err
		}
		if err := deliver(ctx, renderer, store, e); err != nil {
			return err
		}
		if logger != nil {
			logger.Debug("notification delivered", "event", e.Type, "job_id", j.ID)
		}
		return nil
	}
}

func deliver(ctx context.Context, renderer *Renderer, store repository.NotificationRepo, e Event) error {
	ns, err := renderer.Render(ctx, e)
	if err != nil {
		return err
	}
	if len(ns) == 0 {
		return nil
	}
	if _, err := store.CreateNotifications(ctx, ns); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}
	return nil
}

// Emit publishes e and logs a failure instead of returning it. Callers use it
// after their transition has committed, where a delivery problem must not
// surface as a failed operation.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && logger != nil {
		logger.Warn("publish notification failed", "event", e.Type, "subject_id", e.SubjectID, "err", err)
	}
}
