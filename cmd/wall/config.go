package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/wall/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Program() string {
	return c.subProgram("config")
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", r.fs.ErrorHandling())
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) != 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// effective folds the global flags into the loaded configuration.
func (c *configCmd) effective() *config.Config {
	cfg := *c.root.config
	cfg.X11.Display = c.display
	cfg.Notify.Set = c.setAlerts
	cfg.Notify.Save = c.saveAlerts
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	return &cfg
}

func (c *configCmd) runPrint() error {
	fmt.Fprint(c.stdout, c.effective().String())
	return nil
}

func (c *configCmd) runSave() error {
	// Save over the file that was loaded, otherwise to the per-user default.
	path := config.NewLoader(version, configPathOverride).GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("failed to locate a configuration directory")
	}
	if err := config.Save(c.effective(), path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
