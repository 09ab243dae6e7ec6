// Package config loads runtime configuration from the environment into an
// explicit struct; nothing in the program reads environment variables
// directly.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SheetKey identifies the shared spreadsheet document. It is only
	// required for commands that fetch; offline commands run without it.
	SheetKey string `envconfig:"RUNNI_GSHEET_KEY"`

	// CacheMaxAge is how long a cached CSV download stays valid, judged by
	// file modification time.
	CacheMaxAge time.Duration `envconfig:"RUNNI_CACHE_MAX_AGE" default:"10m"`

	// HTTPTimeout bounds the spreadsheet download. The original tool had
	// no timeout at all; a hung request would hang the run forever.
	HTTPTimeout time.Duration `envconfig:"RUNNI_HTTP_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"RUNNI_LOG_LEVEL" default:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
