package notifications

import (
	"encoding/json"
	"fmt"

	"beatsbook/internal/shared/config"
	"beatsbook/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes booking lifecycle events. Delivery is best effort; a
// failed publish is logged and never fails the booking that triggered it.
type Producer interface {
	PublishBookingConfirmed(event *BookingConfirmed)
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewProducer creates a Kafka producer for booking notifications. Returns
// nil without error when no brokers are configured, which disables
// notifications entirely.
func NewProducer(cfg *config.Config, log *logger.Logger) (Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, booking notifications disabled")
		return nil, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer connected", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.BookingTopic)
	return &kafkaProducer{
		producer: producer,
		topic:    cfg.Kafka.BookingTopic,
		log:      log,
	}, nil
}

func (p *kafkaProducer) PublishBookingConfirmed(event *BookingConfirmed) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Error("failed to marshal booking notification", "order_id", event.OrderID)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// Keyed by event so notifications for one event stay ordered.
		Key:   sarama.StringEncoder(event.EventID.String()),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.WithError(err).Error("failed to publish booking notification", "order_id", event.OrderID)
		return
	}

	p.log.Debug("booking notification published",
		"order_id", event.OrderID,
		"partition", partition,
		"offset", offset,
	)
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}
