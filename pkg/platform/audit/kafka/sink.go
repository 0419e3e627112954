// Package kafka streams audit events to a Kafka topic, keyed by user id so a
// user's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "eventgate/pkg/platform/audit"
)

type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type config struct {
	partitions  int32
	replication int16
	logger      *slog.Logger
}

type Option func(*config)

// WithTopicLayout sets partitions and replication used when creating the topic.
func WithTopicLayout(partitions int32, replication int16) Option {
	return func(c *config) {
		c.partitions = partitions
		c.replication = replication
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New connects to the brokers and makes sure topic exists.
func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Sink, error) {
	cfg := config{partitions: 3, replication: 1, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic, cfg.partitions, cfg.replication); err != nil {
		client.Close()
		return nil, err
	}
	cfg.logger.InfoContext(ctx, "audit kafka sink ready", "topic", topic, "brokers", brokers)
	return &Sink{client: client, topic: topic, logger: cfg.logger}, nil
}

func ensureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replication int16) error {
	resps, err := admin.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resps {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces event synchronously and returns the broker error, if any.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *Sink) Close(ctx context.Context) {
	if err := s.client.Flush(ctx); err != nil {
		s.logger.WarnContext(ctx, "audit kafka flush failed", "error", err)
	}
	s.client.Close()
}
