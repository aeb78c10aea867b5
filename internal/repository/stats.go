package repository

import (
	"context"
	"fmt"
	"time"

	"task-tracker/internal/models"
)

// weekOrder lists weekdays Monday first.
var weekOrder = [...]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayStatistics counts completed tasks by the weekday they were completed on.
// The result always has seven entries, Monday through Sunday, including zero counts.
func (s *TaskStore) WeekdayStatistics(ctx context.Context) ([]models.WeekdayCount, error) {
	if s.closed.Load() {
		return nil, storageErr("weekday statistics", ErrClosed)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT completed_at FROM tasks WHERE completed = 1 AND completed_at IS NOT NULL`)
	if err != nil {
		return nil, storageErr("weekday statistics", err)
	}
	defer rows.Close()

	var byDay [7]int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("weekday statistics", err)
		}
		ts, err := time.Parse(timeLayout, raw)
		if err != nil {
			return nil, storageErr("weekday statistics", fmt.Errorf("parse completed_at %q: %w", raw, err))
		}
		byDay[ts.In(s.loc).Weekday()]++
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("weekday statistics", err)
	}

	out := make([]models.WeekdayCount, 0, len(weekOrder))
	for _, wd := range weekOrder {
		out = append(out, models.WeekdayCount{Weekday: wd.String(), Count: byDay[wd]})
	}
	return out, nil
}

// CompletionTimeHistogram counts completed tasks by whole days taken to complete.
// Buckets cover every day from 1 to the largest observed value; same-day
// completions are reported in SameDay only.
func (s *TaskStore) CompletionTimeHistogram(ctx context.Context) (models.CompletionHistogram, error) {
	var h models.CompletionHistogram
	if s.closed.Load() {
		return h, storageErr("completion histogram", ErrClosed)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT time_to_complete, COUNT(*) FROM tasks
		 WHERE completed = 1 AND time_to_complete IS NOT NULL
		 GROUP BY time_to_complete`)
	if err != nil {
		return h, storageErr("completion histogram", err)
	}
	defer rows.Close()

	counts := map[int]int{}
	maxDays := 0
	for rows.Next() {
		var days, n int
		if err := rows.Scan(&days, &n); err != nil {
			return h, storageErr("completion histogram", err)
		}
		if days <= 0 {
			h.SameDay += n
			continue
		}
		counts[days] = n
		maxDays = max(maxDays, days)
	}
	if err := rows.Err(); err != nil {
		return h, storageErr("completion histogram", err)
	}

	h.Buckets = make([]models.DayBucket, 0, maxDays)
	for d := 1; d <= maxDays; d++ {
		h.Buckets = append(h.Buckets, models.DayBucket{Days: d, Count: counts[d]})
	}
	return h, nil
}
