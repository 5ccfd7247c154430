package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/wall/internal/config"
	"github.com/example/wall/internal/notify"
	"github.com/example/wall/internal/wallpaper"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// Replaced in tests.
var currentBackend = wallpaper.Current

type runnable interface{ Run() error }

type root struct {
	fs         *flag.FlagSet
	program    string
	backend    wallpaper.Backend
	notifier   *notify.Notifier
	config     *config.Config
	stdout     io.Writer
	display    string
	logLevel   string
	setAlerts  bool
	saveAlerts bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *root) subProgram(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWith(cfg, flag.ExitOnError)
}

func newRootWith(cfg *config.Config, handling flag.ErrorHandling) *root {
	r := &root{
		fs:       flag.NewFlagSet("wall", handling),
		program:  "wall",
		backend:  currentBackend(),
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		stdout:   os.Stdout,
	}
	r.fs.StringVar(&r.display, "display", cfg.X11.Display, "X display to connect to (default $DISPLAY)")
	// Empty falls through to WALL_LOG_LEVEL, then the config file, then warn.
	r.fs.StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn, error")
	r.fs.BoolVar(&r.setAlerts, "notify-set", cfg.Notify.Set, "show a desktop notification after setting the wallpaper")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving the wallpaper")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.configureLogging(); err != nil {
		return err
	}
	r.notifier.Enable(notify.EventSet, r.setAlerts)
	r.notifier.Enable(notify.EventSave, r.saveAlerts)

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "set":
		cmd, err = parseSetCmd(subArgs, r)
	case "get":
		cmd, err = parseGetCmd(subArgs, r)
	case "info":
		cmd, err = parseInfoCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	case "help":
		cmd = &helpCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) options() wallpaper.Options {
	return wallpaper.Options{Display: r.display}
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (r *root) notifySet(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Set(path)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}
