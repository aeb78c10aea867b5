package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Config holds the event stream settings.
type Config struct {
	Brokers    []string
	Topic      string
	Partitions int
}

// EnsureTopic creates the task events topic with configured partitions (idempotent).
// Call at startup; if it fails (e.g. no broker or topic exists), the app still runs.
func EnsureTopic(ctx context.Context, cfg Config) {
	if len(cfg.Brokers) == 0 {
		return
	}
	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", cfg.Topic, "partitions", cfg.Partitions)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes task lifecycle events to Kafka. A nil *Publisher drops events.
type Publisher struct {
	w messageWriter
}

// NewPublisher returns an async publisher, or nil when no brokers are configured.
func NewPublisher(ctx context.Context, cfg Config) *Publisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 0,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn(context.Background(), "Kafka async write failed", "error", err, "messages", len(messages))
			}
		},
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &Publisher{w: w}
}

// Publish sends one event. Events for the same task share a key so they stay ordered.
func (p *Publisher) Publish(ctx context.Context, ev models.TaskEvent) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal task event: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: EventKey(ev), Value: payload}); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}

// EventKey is the partition key of an event.
func EventKey(ev models.TaskEvent) []byte {
	if ev.TaskID == 0 {
		return []byte("tasks")
	}
	return []byte("task:" + strconv.FormatInt(ev.TaskID, 10))
}
