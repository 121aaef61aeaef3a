// Package config loads service settings from the environment and hasher
// profiles from TOML files.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        int           `env:"SDHASH_PORT"          envDefault:"8080"`
	ImageDir    string        `env:"SDHASH_IMAGE_DIR"     envDefault:"./images"`
	IndexFile   string        `env:"SDHASH_INDEX_FILE"    envDefault:"./images/.index.cbor"`
	Profile     string        `env:"SDHASH_PROFILE"`
	Workers     int           `env:"SDHASH_WORKERS"       envDefault:"4"`
	MaxUploadMB int64         `env:"SDHASH_MAX_UPLOAD_MB" envDefault:"10"`
	CacheTTL    time.Duration `env:"SDHASH_CACHE_TTL"     envDefault:"5m"`
	LogLevel    string        `env:"SDHASH_LOG_LEVEL"     envDefault:"info"`
	LogFile     string        `env:"SDHASH_LOG_FILE"`
	GinMode     string        `env:"GIN_MODE"             envDefault:"release"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
