package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	deliveryTimeout = 5 * time.Second
	// enqueueTimeout bounds the partition metadata lookup WriteMessages
	// still does synchronously in async mode.
	enqueueTimeout = time.Second
)

// Producer publishes JSON events without waiting for the broker. Delivery
// failures are reported through the logger once the writer gives up.
type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(brokers []string, log *slog.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Producer{log: log.With("component", "kafka_producer")}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           deliveryTimeout,
		MaxAttempts:            3,
		WriteBackoffMax:        200 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.completed,
	}
	return p, nil
}

func (p *Producer) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.log.Warn("publish_error", "topic", m.Topic, "key", string(m.Key), "error", err)
	}
}

// PublishEvent enqueues event on topic and returns without waiting for the
// broker.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("kafka: enqueue failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// EnsureTopics creates the given topics through the cluster controller.
// Topics that already exist are left alone.
func EnsureTopics(broker string, topics ...string) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("kafka: dial: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka: controller: %w", err)
	}

	admin, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("kafka: dial controller: %w", err)
	}
	defer admin.Close()

	cfgs := make([]kafka.TopicConfig, 0, len(topics))
	for _, tp := range topics {
		cfgs = append(cfgs, kafka.TopicConfig{
			Topic:             tp,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	if err := admin.CreateTopics(cfgs...); err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("kafka: create topics: %w", err)
	}
	return nil
}
