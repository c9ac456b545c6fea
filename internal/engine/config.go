package engine

import (
	"time"

	"github.com/nikmy/txflow/internal/queue"
)

const defaultCloseTimeout = 10 * time.Second

type Config struct {
	ShutdownPolicy queue.ShutdownPolicy `yaml:"shutdown_policy" split_words:"true"`
	CloseTimeout   time.Duration        `yaml:"close_timeout" split_words:"true"`
}
