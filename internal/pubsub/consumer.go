package pubsub

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

const readerQueueCapacity = 1024

// NewKafkaConsumer reads failure events. Without a group id it tails
// partition 0 from its end and commits nothing.
func NewKafkaConsumer(cfg Config, log logger.Logger) (*KafkaConsumer, error) {
	cfg = cfg.withDefaults()

	readerCfg := kafka.ReaderConfig{
		Brokers:       cfg.Brokers,
		Topic:         cfg.Topic,
		GroupID:       cfg.GroupID,
		QueueCapacity: readerQueueCapacity,
		MaxAttempts:   3,
	}

	reader := kafka.NewReader(readerCfg)
	if cfg.GroupID == "" {
		if err := reader.SetOffset(kafka.LastOffset); err != nil {
			_ = reader.Close()
			return nil, errors.WrapFail(err, "seek to last offset")
		}
	}

	return &KafkaConsumer{
		reader: reader,
		commit: cfg.GroupID != "",
		log:    log.With("kafka_consumer"),
	}, nil
}

type KafkaConsumer struct {
	reader *kafka.Reader
	commit bool
	log    logger.Logger
}

// Consume hands every failure event to fn until ctx is done or fn
// returns an error. Malformed messages are logged and skipped.
func (c *KafkaConsumer) Consume(ctx context.Context, fn func(FailureEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return errors.WrapFail(err, "fetch message")
		}

		var event FailureEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Warn(errors.WrapFailf(err, "decode message at offset %d", msg.Offset))
		} else if err := fn(event); err != nil {
			return err
		}

		if !c.commit {
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error(errors.WrapFail(err, "commit message"))
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return errors.WrapFail(c.reader.Close(), "close kafka reader")
}
