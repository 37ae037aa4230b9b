package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"yelp-explorer/internal/dataset"
	"yelp-explorer/internal/engine"
	"yelp-explorer/internal/logging"
)

// Config is the full runtime configuration. Defaults come first, then the
// YAML file, then the environment, then command-line flags.
type Config struct {
	ListenAddr string        `yaml:"listen_addr"`
	LogLevel   string        `yaml:"log_level"`
	Dataset    DatasetConfig `yaml:"dataset"`
}

type DatasetConfig struct {
	Handle string `yaml:"handle"`
	File   string `yaml:"file"`

	// Dir points at an already unpacked copy; when set nothing is downloaded.
	Dir string `yaml:"dir"`

	CacheDir string `yaml:"cache_dir"`
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Key      string `yaml:"key"`
}

func Default() Config {
	cacheDir := ".kagglehub"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "kagglehub")
	}
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Dataset: DatasetConfig{
			Handle:   engine.DefaultHandle,
			File:     engine.DefaultFile,
			CacheDir: cacheDir,
			BaseURL:  dataset.DefaultBaseURL,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if any) and
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv reads the Kaggle credentials and cache location the way the
// Kaggle tooling does.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("KAGGLE_USERNAME"); ok {
		c.Dataset.Username = v
	}
	if v, ok := lookup("KAGGLE_KEY"); ok {
		c.Dataset.Key = v
	}
	if v, ok := lookup("KAGGLEHUB_CACHE"); ok && v != "" {
		c.Dataset.CacheDir = v
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Dataset.File == "" {
		return errors.New("dataset file must not be empty")
	}
	if c.Dataset.Dir == "" {
		if _, err := dataset.ParseHandle(c.Dataset.Handle); err != nil {
			return err
		}
		if c.Dataset.CacheDir == "" {
			return errors.New("dataset cache directory must not be empty")
		}
	}
	return nil
}
