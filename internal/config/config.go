package config

import (
	"fmt"
	"strings"
)

// Notify holds notification settings.
type Notify struct {
	Set  bool
	Save bool
}

// X11 holds settings for the X11 backend.
type X11 struct {
	Display string
}

// Config holds the application configuration.
type Config struct {
	LogLevel string
	X11      X11
	Notify   Notify
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "", // empty falls back to WALL_LOG_LEVEL, then warn
		Notify: Notify{
			Set:  false,
			Save: false,
		},
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.LogLevel != "" {
		fmt.Fprintf(&sb, "log_level = %s\n", c.LogLevel)
		sb.WriteString("\n")
	}

	if c.X11.Display != "" {
		sb.WriteString("[x11]\n")
		fmt.Fprintf(&sb, "display = %s\n", c.X11.Display)
		sb.WriteString("\n")
	}

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "set = %v\n", c.Notify.Set)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)

	return sb.String()
}
