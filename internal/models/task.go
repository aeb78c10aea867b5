package models

import "time"

// Task represents a tracked task.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Completed      bool       `json:"completed"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TimeToComplete *int       `json:"time_to_complete,omitempty"` // whole days
}

// Event types published on the task events topic.
const (
	EventTaskCreated       = "task.created"
	EventTaskCompleted     = "task.completed"
	EventIncompleteDeleted = "tasks.incomplete_deleted"
)

// TaskEvent is the message payload for Kafka.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     int64     `json:"task_id,omitempty"`
	Task       *Task     `json:"task,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
