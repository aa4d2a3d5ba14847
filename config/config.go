package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var PrismHomeDir = func() string {
	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("couldn't get user home directory: %s", err)
	}
	return filepath.Join(home, ".prism")
}()

type Config struct {
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Explain   ExplainConfig   `yaml:"explain"`
}

type OptimizerConfig struct {
	// DisablePushdown turns off projection pushdown; mainly useful when
	// debugging a plan rewrite.
	DisablePushdown bool `yaml:"disablePushdown"`
}

type ExplainConfig struct {
	WithSchemaInfo bool `yaml:"withSchemaInfo"`
}

func defaultConfig() *Config {
	return &Config{
		Explain: ExplainConfig{
			WithSchemaInfo: true,
		},
	}
}

// Read loads the configuration from ~/.prism/config.yml, falling back to
// defaults if the file doesn't exist.
func Read() (*Config, error) {
	return ReadConfig(filepath.Join(PrismHomeDir, "config.yml"))
}

func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't read configuration file")
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	return config, nil
}
