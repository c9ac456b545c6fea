package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

// NewKafkaProducer publishes reported failures to cfg.Topic.
// Writes are asynchronous, so Report never waits for the brokers.
func NewKafkaProducer(cfg Config, log logger.Logger) *KafkaProducer {
	cfg = cfg.withDefaults()
	log = log.With("kafka_producer")

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        true,

		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error(errors.WrapFailf(err, "publish %d failure events", len(messages)))
			}
		},
	}

	return &KafkaProducer{
		writer: w,
		log:    log,
		now:    time.Now,
	}
}

type KafkaProducer struct {
	writer *kafka.Writer
	log    logger.Logger
	now    func() time.Time
}

func (p *KafkaProducer) Report(f queue.Failure) {
	value, err := json.Marshal(NewFailureEvent(f, p.now()))
	if err != nil {
		p.log.Error(errors.WrapFail(err, "marshal failure event"))
		return
	}

	err = p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(f.ID.String()),
		Value: value,
	})
	if err != nil {
		p.log.Error(errors.WrapFail(err, "enqueue failure event"))
	}
}

// Close flushes buffered events.
func (p *KafkaProducer) Close() error {
	return errors.WrapFail(p.writer.Close(), "close kafka writer")
}
