package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

func readFile(path string, cfg *Configuration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	return decoder.Decode(cfg)
}

func readEnv(cfg *Configuration) error {
	return envconfig.Process("", cfg)
}

// Load reads defaults, then the YAML file, then the environment.
// A missing file is not an error, the service can run from env alone.
func Load(path string) (*Configuration, error) {
	var cfg Configuration
	defaults(&cfg)

	if path != "" {
		err := readFile(path, &cfg)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := readEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config env: %w", err)
	}

	cfg.Registry = DefaultRegistry().Merge(cfg.Registry)
	if err := cfg.Registry.Validate(); err != nil {
		return nil, err
	}

	if cfg.Server.Store != StoreRedis && cfg.Server.Store != StoreMemory {
		return nil, fmt.Errorf("unknown store %q", cfg.Server.Store)
	}
	if cfg.EVM.BlockBatch == 0 {
		return nil, errors.New("EVM block_batch must be positive")
	}

	return &cfg, nil
}

// Init is Load for the server entry point, reading config error is fatal
func Init(path string) *Configuration {
	cfg, err := Load(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return cfg
}
