// Package service is the layer both frontends call: it validates input, runs the
// store operation and then keeps the response cache and event stream in step.
package service

import (
	"context"
	"strings"
	"time"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

// Store is the task persistence the service runs on.
type Store interface {
	Create(ctx context.Context, title, description string) (models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id int64) (models.Task, bool, error)
	Complete(ctx context.Context, id int64) (models.Task, error)
	DeleteIncomplete(ctx context.Context) (int64, error)
	WeekdayStatistics(ctx context.Context) ([]models.WeekdayCount, error)
	CompletionTimeHistogram(ctx context.Context) (models.CompletionHistogram, error)
}

// Invalidator drops cached task responses.
type Invalidator interface {
	InvalidateTasks(ctx context.Context) error
}

// Publisher emits task lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, ev models.TaskEvent) error
}

// Tasks coordinates task operations for the menu and the HTTP API.
type Tasks struct {
	store  Store
	cache  Invalidator
	events Publisher
	now    func() time.Time
}

// Option configures Tasks.
type Option func(*Tasks)

// WithCache invalidates c after every mutation.
func WithCache(c Invalidator) Option {
	return func(t *Tasks) { t.cache = c }
}

// WithEvents publishes lifecycle events to p.
func WithEvents(p Publisher) Option {
	return func(t *Tasks) { t.events = p }
}

// New returns a Tasks service over store.
func New(store Store, opts ...Option) *Tasks {
	t := &Tasks{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create trims and validates the fields, then stores a new task.
func (t *Tasks) Create(ctx context.Context, title, description string) (models.Task, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if err := models.ValidateNewTask(title, description); err != nil {
		return models.Task{}, err
	}
	task, err := t.store.Create(ctx, title, description)
	if err != nil {
		return models.Task{}, err
	}
	t.changed(ctx, models.TaskEvent{Type: models.EventTaskCreated, TaskID: task.ID, Task: &task})
	return task, nil
}

// List returns every task.
func (t *Tasks) List(ctx context.Context) ([]models.Task, error) {
	return t.store.ListAll(ctx)
}

// Pending returns the tasks that are not completed yet, in store order.
func (t *Tasks) Pending(ctx context.Context) ([]models.Task, error) {
	all, err := t.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Task, 0, len(all))
	for _, task := range all {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	return pending, nil
}

// Get looks up one task; found is false when it does not exist.
func (t *Tasks) Get(ctx context.Context, id int64) (models.Task, bool, error) {
	return t.store.Get(ctx, id)
}

// Complete marks a task done.
func (t *Tasks) Complete(ctx context.Context, id int64) (models.Task, error) {
	task, err := t.store.Complete(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	t.changed(ctx, models.TaskEvent{Type: models.EventTaskCompleted, TaskID: task.ID, Task: &task})
	return task, nil
}

// DeleteIncomplete removes all incomplete tasks and returns how many were removed.
func (t *Tasks) DeleteIncomplete(ctx context.Context) (int64, error) {
	n, err := t.store.DeleteIncomplete(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.changed(ctx, models.TaskEvent{Type: models.EventIncompleteDeleted, Count: n})
	}
	return n, nil
}

// WeekdayStatistics returns completions per weekday, Monday first.
func (t *Tasks) WeekdayStatistics(ctx context.Context) ([]models.WeekdayCount, error) {
	return t.store.WeekdayStatistics(ctx)
}

// CompletionTimeHistogram returns completions bucketed by days taken.
func (t *Tasks) CompletionTimeHistogram(ctx context.Context) (models.CompletionHistogram, error) {
	return t.store.CompletionTimeHistogram(ctx)
}

// changed runs after a committed mutation. Failures here never undo the mutation.
func (t *Tasks) changed(ctx context.Context, ev models.TaskEvent) {
	if t.cache != nil {
		if err := t.cache.InvalidateTasks(ctx); err != nil {
			logger.Warn(ctx, "Cache invalidation failed", "error", err, "event", ev.Type)
		}
	}
	if t.events != nil {
		ev.OccurredAt = t.now().UTC()
		if err := t.events.Publish(ctx, ev); err != nil {
			logger.Warn(ctx, "Task event publish failed", "error", err, "event", ev.Type)
		}
	}
}
