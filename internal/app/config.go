package app

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds settings read from the environment. Command-line flags
// override them.
type Config struct {
	Lang        string `env:"ZSKEMA_LANG" envDefault:"en"`
	LogLevel    string `env:"ZSKEMA_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"ZSKEMA_LOG_FORMAT" envDefault:"console"`
	Concurrency int    `env:"ZSKEMA_CONCURRENCY" envDefault:"4"`
	MetricsFile string `env:"ZSKEMA_METRICS_FILE"`
}

// LoadConfig parses environ (os.Environ() when nil).
func LoadConfig(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("config: ZSKEMA_CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}
	return cfg, nil
}
