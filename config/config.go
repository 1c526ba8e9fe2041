package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const (
	DefaultPort        = 8080
	DefaultContentRoot = "wwwroot"
)

// Config is read once at startup and never mutated afterwards, so it is safe
// to share across connection goroutines without locking.
type Config struct {
	Port        int    `json:"port"`
	ContentRoot string `json:"contentRoot"`
}

func Default() Config {
	return Config{
		Port:        DefaultPort,
		ContentRoot: DefaultContentRoot,
	}
}

// Load reads a JSON config file. An absent or malformed file is not fatal:
// the documented defaults are returned and the reason is logged.
func Load(path string, logger *slog.Logger) Config {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("config file unreadable, using defaults", "path", path, "error", err)
		}
		return cfg
	}

	var loaded Config
	if err := json.Unmarshal(content, &loaded); err != nil {
		logger.Warn("config file malformed, using defaults", "path", path, "error", err)
		return cfg
	}

	if loaded.Port != 0 {
		cfg.Port = loaded.Port
	}
	if loaded.ContentRoot != "" {
		cfg.ContentRoot = loaded.ContentRoot
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("config invalid, using defaults", "path", path, "error", err)
		return Default()
	}

	return cfg
}

func (cfg Config) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", cfg.Port)
	}
	if cfg.ContentRoot == "" {
		return fmt.Errorf("config: content root is empty")
	}
	return nil
}

func (cfg Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
}
