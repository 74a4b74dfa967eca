package config

import (
	"os"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "config.yaml"

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Path string `yaml:"path"`
		Type string `yaml:"type"`
	} `yaml:"model"`
	Predictor struct {
		CacheSize int `yaml:"cache_size"`
	} `yaml:"predictor"`
	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
	Log struct {
		Level      string `yaml:"level"`
		JSON       bool   `yaml:"json"`
		Path       string `yaml:"path"`
		MaxSize    int    `yaml:"max_size"`
		MaxAge     int    `yaml:"max_age"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

func DefaultConfig() *Config {
	var config Config
	config.Http.Port = 8501
	config.Http.Timeout = 30 * time.Second
	config.Http.MaxBodyBytes = 1 << 20
	config.Http.AllowedOrigins = []string{"*"}
	config.Model.Path = "newModel.sav"
	config.Predictor.CacheSize = 1024
	config.History.Path = "history.db"
	config.Log.Level = "info"
	config.Log.MaxSize = 100
	return &config
}

// LoadConfig decodes the file at path on top of DefaultConfig. A missing file
// at DefaultPath yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return config, nil
		}
		return nil, errors.Trace(err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Annotatef(err, "parse %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Http.Port <= 0 || c.Http.Port > 65535:
		return errors.NotValidf("http.port %d", c.Http.Port)
	case c.Http.Timeout <= 0:
		return errors.NotValidf("http.timeout %v", c.Http.Timeout)
	case c.Http.MaxBodyBytes <= 0:
		return errors.NotValidf("http.max_body_bytes %d", c.Http.MaxBodyBytes)
	case c.Model.Path == "":
		return errors.NotValidf("empty model.path")
	case c.Predictor.CacheSize < 0:
		return errors.NotValidf("predictor.cache_size %d", c.Predictor.CacheSize)
	case c.History.Enabled && c.History.Path == "":
		return errors.NotValidf("empty history.path")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.NotValidf("log.level %q", c.Log.Level)
	}
	return nil
}
