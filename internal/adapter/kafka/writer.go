package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/mine-ops-etl/internal/config"
	"github.com/couchcryptid/mine-ops-etl/internal/domain"
)

const summaryKind = "summary"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// LedgerPublisher produces validation ledgers to a Kafka topic.
// It implements pipeline.LedgerPublisher.
type LedgerPublisher struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewLedgerPublisher creates a Kafka producer for the configured ledger topic.
func NewLedgerPublisher(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *LedgerPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaLedgerTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &LedgerPublisher{writer: w, clock: clock, logger: logger}
}

// Publish writes one summary message followed by one message per finding, all
// keyed by runID so a run's messages land on one partition in order.
func (p *LedgerPublisher) Publish(ctx context.Context, runID string, summary domain.LedgerSummary) error {
	msgs, err := ledgerMessages(runID, summary, p.clock.Now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish ledger: %w", err)
	}
	p.logger.Debug("ledger published", "run_id", runID, "messages", len(msgs))
	return nil
}

func (p *LedgerPublisher) Close() error {
	return p.writer.Close()
}

type summaryMessage struct {
	RunID string `json:"run_id"`
	domain.LedgerSummary
}

type findingMessage struct {
	RunID string `json:"run_id"`
	domain.Finding
}

func ledgerMessages(runID string, summary domain.LedgerSummary, publishedAt time.Time) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, 1+len(summary.Findings))

	msg, err := serializeToMessage(runID, summaryKind, summaryMessage{RunID: runID, LedgerSummary: summary}, publishedAt)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, msg)

	for _, f := range summary.Findings {
		msg, err := serializeToMessage(runID, string(f.Kind), findingMessage{RunID: runID, Finding: f}, publishedAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func serializeToMessage(runID, kind string, payload any, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s message: %w", kind, err)
	}
	return kafkago.Message{
		Key:   []byte(runID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(kind)},
			{Key: "published_at", Value: []byte(publishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
