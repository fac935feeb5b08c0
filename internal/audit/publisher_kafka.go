package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scoregate/internal/platform/kafka/producer"
)

// KafkaPublisher fans audit entries out to a Kafka topic, keyed by account id
// so one account's trail stays in partition order.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaPublisher creates a publisher writing to topic.
func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

type entryJSON struct {
	ID             string `json:"id"`
	OccurredAt     string `json:"occurred_at"`
	SourceAddr     string `json:"source_addr"`
	ClientPlatform string `json:"client_platform,omitempty"`
	AccountID      string `json:"account_id"`
	Difficulty     string `json:"difficulty"`
	ScoreMs        int64  `json:"score_ms"`
	RateLimited    bool   `json:"rate_limited"`
	Success        bool   `json:"success"`
	Outcome        string `json:"outcome"`
	RequestID      string `json:"request_id,omitempty"`
}

// Publish serializes the entry and hands it to the async producer.
func (p *KafkaPublisher) Publish(_ context.Context, entry Entry) error {
	payload, err := json.Marshal(entryJSON{
		ID:             entry.ID.String(),
		OccurredAt:     entry.Timestamp.UTC().Format(time.RFC3339Nano),
		SourceAddr:     entry.SourceAddr,
		ClientPlatform: entry.ClientPlatform,
		AccountID:      entry.AccountID,
		Difficulty:     entry.Difficulty,
		ScoreMs:        entry.ScoreMs,
		RateLimited:    entry.RateLimited,
		Success:        entry.Success,
		Outcome:        entry.Outcome,
		RequestID:      entry.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	return p.producer.ProduceAsync(&producer.Message{
		Topic: p.topic,
		Key:   []byte(entry.AccountID),
		Value: payload,
	})
}

var _ Publisher = (*KafkaPublisher)(nil)
