package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/blinkroom/chat-service/internal/config"
	"github.com/blinkroom/chat-service/internal/metrics"
	"github.com/blinkroom/chat-service/internal/model"
)

// Publisher writes room events to the Kafka topic shared by all service
// instances.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Kafka.Broker),
			Topic:    cfg.Kafka.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Close() {
	_ = p.writer.Close()
}

func (p *Publisher) Publish(ctx context.Context, event model.RoomEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal room event: %w", err)
	}

	key := model.EventDelete
	if event.Message != nil {
		key = event.Message.ID.String()
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write room event: %w", err)
	}

	return nil
}

// Consumer reads the event topic and feeds the local hub. Every instance
// consumes the full topic so each one can serve its own subscribers.
type Consumer struct {
	reader *kafka.Reader
	hub    *Hub
	logger logger_lib.LoggerInterface
}

func NewConsumer(cfg *config.Config, hub *Hub, logger logger_lib.LoggerInterface) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:   []string{cfg.Kafka.Broker},
			Topic:     cfg.Kafka.Topic,
			Partition: 0,
			MinBytes:  1,
			MaxBytes:  10e6,
		}),
		hub:    hub,
		logger: logger,
	}
}

func (c *Consumer) Close() {
	_ = c.reader.Close()
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read room event: %w", err)
		}

		var event model.RoomEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			c.logger.Error(fmt.Sprintf("failed to decode room event: %v", err))
			continue
		}

		c.hub.Broadcast(event)
		metrics.EventsBroadcast.Inc()
	}
}
