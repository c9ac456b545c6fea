package mongostore

import "time"

type Config struct {
	URL     string        `yaml:"url" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`

	Database string `yaml:"database" split_words:"true"`

	Auth struct {
		Username string `yaml:"username" split_words:"true"`
		Password string `yaml:"password" split_words:"true"`
	} `yaml:"auth"`

	Pool struct {
		MinSize uint64 `yaml:"minSize" split_words:"true"`
		MaxSize uint64 `yaml:"maxSize" split_words:"true"`
	} `yaml:"pool"`
}
