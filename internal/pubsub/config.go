package pubsub

import "time"

type Config struct {
	Enabled bool     `yaml:"enabled" split_words:"true"`
	Brokers []string `yaml:"brokers" split_words:"true"`
	Topic   string   `yaml:"topic"   split_words:"true"`

	// BatchTimeout bounds how long failures wait before being sent.
	BatchTimeout time.Duration `yaml:"batch_timeout" split_words:"true"`

	// GroupID is used by consumers.
	GroupID string `yaml:"group_id" split_words:"true"`
}

const (
	defaultTopic        = "txflow.failures"
	defaultBatchTimeout = 100 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.Topic == "" {
		c.Topic = defaultTopic
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = defaultBatchTimeout
	}
	return c
}
