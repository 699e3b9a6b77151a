package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort    = "8080"
	DefaultLogMode = "dev"
	DefaultTTL     = "10m"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Specs struct {
		TTL string `yaml:"ttl"`
		Dir string `yaml:"dir"`
	} `yaml:"specs"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes YAML after expanding ${VAR} references from the environment, so secrets such as
// postgres.url can stay out of the file. Empty fields get defaults.
func Parse(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Log.Mode == "" {
		c.Log.Mode = DefaultLogMode
	}
	if c.Redis.TTL == "" {
		c.Redis.TTL = DefaultTTL
	}
	if c.Specs.TTL == "" {
		c.Specs.TTL = DefaultTTL
	}
}

func (c Config) validate() error {
	for name, raw := range map[string]string{"redis.ttl": c.Redis.TTL, "specs.ttl": c.Specs.TTL} {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
