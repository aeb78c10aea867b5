package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"task-tracker/internal/models"
)

const timeLayout = time.RFC3339Nano

const day = 24 * time.Hour

// TaskStore persists tasks in SQLite and derives completion statistics.
// It owns the database handle; Close releases it.
type TaskStore struct {
	db     *sql.DB
	now    func() time.Time
	loc    *time.Location
	closed atomic.Bool
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithClock replaces time.Now as the source of creation and completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

// WithLocation sets the time zone used to pick the weekday of a completion.
func WithLocation(loc *time.Location) Option {
	return func(s *TaskStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewTaskStore wraps an open, migrated database.
func NewTaskStore(db *sql.DB, opts ...Option) *TaskStore {
	s := &TaskStore{db: db, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the database handle. Further calls are no-ops.
func (s *TaskStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *TaskStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return storageErr("ping", ErrClosed)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// Create inserts a new incomplete task. Title and description are stored as given.
func (s *TaskStore) Create(ctx context.Context, title, description string) (models.Task, error) {
	if s.closed.Load() {
		return models.Task{}, storageErr("create", ErrClosed)
	}
	t := models.Task{
		Title:       title,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, completed, created_at) VALUES (?, ?, 0, ?)`,
		t.Title, t.Description, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return models.Task{}, storageErr("create", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return models.Task{}, storageErr("create", err)
	}
	return t, nil
}

// ListAll returns every task in insertion order.
func (s *TaskStore) ListAll(ctx context.Context) ([]models.Task, error) {
	if s.closed.Load() {
		return nil, storageErr("list", ErrClosed)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, completed, created_at, completed_at, time_to_complete FROM tasks ORDER BY id`)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr("list", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return tasks, nil
}

// Get looks up a task by id. A missing task is reported with found == false.
func (s *TaskStore) Get(ctx context.Context, id int64) (models.Task, bool, error) {
	if s.closed.Load() {
		return models.Task{}, false, storageErr("get", ErrClosed)
	}
	t, err := s.get(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, false, nil
	}
	if err != nil {
		return models.Task{}, false, storageErr("get", err)
	}
	return t, true, nil
}

// Complete marks an incomplete task as done and records how many whole days it took.
func (s *TaskStore) Complete(ctx context.Context, id int64) (models.Task, error) {
	if s.closed.Load() {
		return models.Task{}, storageErr("complete", ErrClosed)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, storageErr("complete", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := s.get(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("complete task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, storageErr("complete", err)
	}
	if t.Completed {
		return t, fmt.Errorf("complete task %d: %w", id, ErrAlreadyCompleted)
	}

	completedAt := s.now().UTC()
	days := daysBetween(t.CreatedAt, completedAt)
	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET completed = 1, completed_at = ?, time_to_complete = ? WHERE id = ? AND completed = 0`,
		completedAt.Format(timeLayout), days, id); err != nil {
		return models.Task{}, storageErr("complete", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, storageErr("complete", err)
	}

	t.Completed = true
	t.CompletedAt = &completedAt
	t.TimeToComplete = &days
	return t, nil
}

// DeleteIncomplete removes every task that is not completed and returns how many were removed.
func (s *TaskStore) DeleteIncomplete(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, storageErr("delete incomplete", ErrClosed)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE completed = 0`)
	if err != nil {
		return 0, storageErr("delete incomplete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete incomplete", err)
	}
	return n, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *TaskStore) get(ctx context.Context, q querier, id int64) (models.Task, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, title, description, completed, created_at, completed_at, time_to_complete FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (models.Task, error) {
	var (
		t           models.Task
		createdAt   string
		completedAt sql.NullString
		days        sql.NullInt64
	)
	if err := sc.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &createdAt, &completedAt, &days); err != nil {
		return models.Task{}, err
	}
	var err error
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Task{}, fmt.Errorf("parse created_at of task %d: %w", t.ID, err)
	}
	if completedAt.Valid {
		ct, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("parse completed_at of task %d: %w", t.ID, err)
		}
		t.CompletedAt = &ct
	}
	if days.Valid {
		d := int(days.Int64)
		t.TimeToComplete = &d
	}
	return t, nil
}

// daysBetween is the number of whole 24h periods from start to end, never negative.
func daysBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / day)
}
