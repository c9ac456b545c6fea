package config

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/nikmy/txflow/pkg/errors"
)

// Sources lists where Load reads settings from, in order.
// Later sources override earlier ones.
type Sources struct {
	// YAMLPath is the config file. A missing file is an error only
	// when Required is set.
	YAMLPath string
	Required bool

	// DotEnvPath is loaded into the process environment if it exists.
	// Variables already set are not overwritten.
	DotEnvPath string

	// EnvPrefix selects environment overrides, e.g. TXFLOW_SQLITE_PATH.
	EnvPrefix string
}

func Load[T any](src Sources, dst *T) error {
	if src.YAMLPath != "" {
		if err := loadYAML(src.YAMLPath, src.Required, dst); err != nil {
			return err
		}
	}

	if src.DotEnvPath != "" {
		err := godotenv.Load(src.DotEnvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.WrapFailf(err, "load %s", src.DotEnvPath)
		}
	}

	if src.EnvPrefix != "" {
		if err := envconfig.Process(src.EnvPrefix, dst); err != nil {
			return errors.WrapFail(err, "apply environment overrides")
		}
	}

	return nil
}

func loadYAML[T any](path string, required bool, dst *T) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return errors.WrapFailf(err, "read %q", path)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return errors.WrapFailf(err, "parse yaml %q", path)
	}
	return nil
}
