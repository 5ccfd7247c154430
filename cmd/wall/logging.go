package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const defaultLogLevel = "warn"

// Precedence: CLI > Env > Config > Default
func (r *root) resolveLogLevel() string {
	for _, candidate := range []string{r.logLevel, os.Getenv("WALL_LOG_LEVEL"), r.config.LogLevel} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return defaultLogLevel
}

func (r *root) configureLogging() error {
	name := r.resolveLogLevel()
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "wall",
		Level:  level,
	}))
	return nil
}
