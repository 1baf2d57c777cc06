package utils

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Activity events published after state transitions. The notification
// consumer turns these into in-app notifications; everything here is
// best-effort and never blocks the primary write.

const defaultActivityTopic = "event-activity"

var kafkaWriter *kafka.Writer

type ActivityEvent struct {
	Type      string                 `json:"type"` // EVENT_APPROVED, REGISTRATION_CREATED, ...
	UserID    uint                   `json:"user_id,omitempty"`
	EventID   uint                   `json:"event_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// InitializeKafka sets up the activity-stream writer. Kafka is optional;
// without KAFKA_BROKERS, publishing becomes a no-op.
func InitializeKafka() {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Println("ℹ️ KAFKA_BROKERS not set, activity stream disabled")
		return
	}

	topic := os.Getenv("KAFKA_ACTIVITY_TOPIC")
	if topic == "" {
		topic = defaultActivityTopic
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	log.Printf("✅ Kafka activity writer initialized (topic=%s)", topic)
}

// PublishActivity sends one activity event. Failures are logged and
// swallowed.
func PublishActivity(event ActivityEvent) {
	if kafkaWriter == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ failed to marshal activity event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: payload,
	}); err != nil {
		log.Printf("⚠️ failed to publish activity event: %v", err)
	}
}

// NewActivityReader builds a reader for the activity topic, used by the
// notification consumer. Returns nil when Kafka is disabled.
func NewActivityReader() *kafka.Reader {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}

	topic := os.Getenv("KAFKA_ACTIVITY_TOPIC")
	if topic == "" {
		topic = defaultActivityTopic
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   topic,
		GroupID: "notification-consumer",
	})
}
