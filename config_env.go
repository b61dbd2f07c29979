package goSession

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvPrefix prefixes every environment variable read by [LoadConfigFromEnv].
const DefaultEnvPrefix = "GOSESSION_"

// LoadConfigFromEnv returns [DefaultConfig] overlaid with environment variables such as
// GOSESSION_SESSION_TTL or GOSESSION_BINDING_SECRET. The given dotenv files are loaded
// first; missing files are skipped and variables already set in the process win.
func LoadConfigFromEnv(prefix string, dotenvFiles ...string) (Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalidConfiguration, file, err)
		}
	}

	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return cfg, nil
}
