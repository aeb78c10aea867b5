package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/models"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisher_NoBrokers(t *testing.T) {
	p := NewPublisher(context.Background(), Config{Topic: "task-events"})
	assert.Nil(t, p)
	assert.NoError(t, p.Publish(context.Background(), models.TaskEvent{Type: models.EventTaskCreated}))
	assert.NoError(t, p.Close())
}

func TestPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &Publisher{w: w}
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	task := &models.Task{ID: 12, Title: "t", Description: "d", CreatedAt: at}
	require.NoError(t, p.Publish(context.Background(), models.TaskEvent{
		Type: models.EventTaskCreated, TaskID: 12, Task: task, OccurredAt: at,
	}))
	require.NoError(t, p.Publish(context.Background(), models.TaskEvent{
		Type: models.EventIncompleteDeleted, Count: 3, OccurredAt: at,
	}))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "task:12", string(w.msgs[0].Key))
	assert.Equal(t, "tasks", string(w.msgs[1].Key))
	assert.True(t, w.closed)

	var got models.TaskEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &got))
	assert.Equal(t, models.EventIncompleteDeleted, got.Type)
	assert.EqualValues(t, 3, got.Count)
}

func TestPublisher_WriteError(t *testing.T) {
	p := &Publisher{w: &recordingWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), models.TaskEvent{Type: models.EventTaskCompleted, TaskID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task.completed")
}
