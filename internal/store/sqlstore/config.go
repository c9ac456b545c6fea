package sqlstore

import (
	"fmt"
	"net/url"
	"time"
)

const defaultBusyTimeout = 5 * time.Second

type Config struct {
	Path        string        `yaml:"path" split_words:"true"`
	BusyTimeout time.Duration `yaml:"busy_timeout" split_words:"true"`
	ForeignKeys bool          `yaml:"foreign_keys" split_words:"true"`

	// Pragmas are extra "name(value)" pragmas applied on every connection.
	Pragmas []string `yaml:"pragmas" split_words:"true"`
}

func (c Config) dsn() string {
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	if c.ForeignKeys {
		q.Add("_pragma", "foreign_keys(1)")
	}
	for _, p := range c.Pragmas {
		q.Add("_pragma", p)
	}

	return "file:" + c.Path + "?" + q.Encode()
}
