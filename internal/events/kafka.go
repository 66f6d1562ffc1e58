package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter implements Emitter using segmentio/kafka-go.
type KafkaEmitter struct {
	writer *kafka.Writer
}

// NewKafkaEmitter creates an emitter that writes security events to the given
// topic. Returns nil when brokers or topic are unset (stream disabled).
// Call Close when shutting down.
func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaEmitter{writer: writer}
}

// Emit serializes the event as JSON and writes it to the topic, keyed by the
// identifier so events for one account stay ordered within a partition.
func (e *KafkaEmitter) Emit(ctx context.Context, event *Event) error {
	if e == nil || e.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var key []byte
	if event.Identifier != "" {
		key = []byte(event.Identifier)
	}
	if err := e.writer.WriteMessages(writeCtx, kafka.Message{Key: key, Value: payload}); err != nil {
		log.Printf("events: kafka emit failed: %v", err)
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (e *KafkaEmitter) Close() error {
	if e == nil || e.writer == nil {
		return nil
	}
	return e.writer.Close()
}
