package batch

import "time"

const (
	defaultSize     = 50
	defaultInterval = 30 * time.Second
	defaultName     = "batch"
)

type Config struct {
	// Name is given to every submitted batch, so queued batches
	// can be cancelled with Queue.CancelName.
	Name string `yaml:"name" split_words:"true"`

	// Size is the buffer length that triggers a flush.
	Size int `yaml:"size" split_words:"true"`

	// Interval between periodic flushes.
	Interval time.Duration `yaml:"interval" split_words:"true"`

	// Atomic saves every batch inside one database transaction.
	Atomic bool `yaml:"atomic" split_words:"true"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Size <= 0 {
		c.Size = defaultSize
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	return c
}
