package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Telegram struct {
		Token       string `yaml:"token"`
		Debug       bool   `yaml:"debug"`
		PollTimeout int    `yaml:"poll_timeout"`
	} `yaml:"telegram"`
	Bank struct {
		File      string `yaml:"file"`
		ImagesDir string `yaml:"images_dir"`
	} `yaml:"bank"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		BankTTL  string `yaml:"bank_ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Media struct {
		TTL string `yaml:"ttl"`
	} `yaml:"media"`
	Modes map[string]struct {
		Questions int `yaml:"questions"`
	} `yaml:"modes"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ModeTargets returns the configured question count per mode key.
func (c Config) ModeTargets() map[string]int {
	targets := make(map[string]int, len(c.Modes))
	for key, m := range c.Modes {
		targets[key] = m.Questions
	}
	return targets
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
