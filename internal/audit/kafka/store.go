// Package kafka publishes audit events to a Kafka topic.
//
// Kafka is the write path: consumers materialize events for querying. Reads
// against this store are unsupported and served elsewhere.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"bagofholding/internal/audit"
	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// Store produces audit events to a Kafka topic, keyed by bag so per-bag
// ordering is preserved within a partition.
type Store struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client, topic: topic, logger: logger}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Append produces the event synchronously so callers (the audit worker) see
// delivery failures and can surface them in logs.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.BagID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// ListByBag is not served from Kafka; a materializing consumer owns reads.
func (s *Store) ListByBag(context.Context, id.BagID) ([]audit.Event, error) {
	return nil, fmt.Errorf("audit reads are not served from kafka: %w", sentinel.ErrUnavailable)
}

// Close flushes and closes the underlying client.
func (s *Store) Close() {
	s.client.Close()
}
