package main

import (
	"github.com/nikmy/txflow/internal/api"
	"github.com/nikmy/txflow/internal/batch"
	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/metrics"
	"github.com/nikmy/txflow/internal/pubsub"
	"github.com/nikmy/txflow/internal/store/mongostore"
	"github.com/nikmy/txflow/internal/store/pgstore"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/pkg/config"
	"github.com/nikmy/txflow/pkg/environment"
	"github.com/nikmy/txflow/pkg/errors"
)

const envPrefix = "TXFLOW"

type Config struct {
	Environment environment.Env `yaml:"Environment" split_words:"true"`

	Engine   engine.Config     `yaml:"Engine"   envconfig:"ENGINE"`
	Batch    batch.Config      `yaml:"Batch"    envconfig:"BATCH"`
	SQLite   sqlstore.Config   `yaml:"SQLite"   envconfig:"SQLITE"`
	Postgres pgstore.Config    `yaml:"Postgres" envconfig:"POSTGRES"`
	Mongo    mongostore.Config `yaml:"Mongo"    envconfig:"MONGO"`
	API      api.Config        `yaml:"API"      envconfig:"API"`
	Metrics  metrics.Config    `yaml:"Metrics"  envconfig:"METRICS"`
	Events   pubsub.Config     `yaml:"Events"   envconfig:"EVENTS"`
}

func defaultConfig() Config {
	cfg := Config{Environment: environment.Development}
	cfg.SQLite.Path = "txflow.db"
	cfg.API.HTTP.Addr = ":8080"
	cfg.Metrics.Enabled = true
	return cfg
}

func loadConfig(opts rootOptions) (*Config, error) {
	cfg := defaultConfig()

	err := config.Load(config.Sources{
		YAMLPath:   opts.configPath,
		Required:   opts.configRequired,
		DotEnvPath: opts.dotEnvPath,
		EnvPrefix:  envPrefix,
	}, &cfg)
	if err != nil {
		return nil, errors.WrapFail(err, "load config")
	}

	if opts.env != "" {
		cfg.Environment = environment.FromString(opts.env)
	}
	if cfg.Environment == environment.Unknown {
		return nil, errors.Fail("use unknown environment: expected dev or prod")
	}

	return &cfg, nil
}
