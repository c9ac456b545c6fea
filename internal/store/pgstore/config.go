package pgstore

import "time"

type Config struct {
	DSN             string        `yaml:"dsn" split_words:"true"`
	MaxConns        int32         `yaml:"max_conns" split_words:"true"`
	MinConns        int32         `yaml:"min_conns" split_words:"true"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" split_words:"true"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" split_words:"true"`

	// IsoLevel is used by Atomically, e.g. "serializable".
	IsoLevel string `yaml:"iso_level" split_words:"true"`
}
