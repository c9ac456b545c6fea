package api

import "time"

type Config struct {
	Proxy struct {
		Header  string   `yaml:"header"`
		Trusted []string `yaml:"trusted"`
	} `yaml:"proxy"`

	HTTP struct {
		Addr         string        `yaml:"addr" split_words:"true"`
		ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true"`
		WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" split_words:"true"`
	} `yaml:"http"`

	// RequestTimeout bounds how long a request waits for its transaction.
	RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
}
