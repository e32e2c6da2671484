// Package kafka publishes decoded samples as JSON to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/akhenakh/gridcube/payload"
)

// MessageWriter is satisfied by *kafkago.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	w MessageWriter
}

// NewWriter returns a writer keyed by device so one device's samples stay in
// order on a partition.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}
}

func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// message is the JSON document published per sample.
type message struct {
	*payload.Sample
	TypeName  string `json:"type_name"`
	StateName string `json:"state_name,omitempty"`
	UnixMs    int64  `json:"unix_ms,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, s *payload.Sample) error {
	m := message{Sample: s, TypeName: s.Type.String()}
	if s.Type == payload.OperationalStateReport {
		m.StateName = s.State.String()
	}
	if s.Timestamped() {
		m.UnixMs = s.Time().UnixMilli()
	}

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	if err := p.w.WriteMessages(ctx, kafkago.Message{Key: []byte(s.DeviceID), Value: b}); err != nil {
		return fmt.Errorf("failed to publish sample: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
