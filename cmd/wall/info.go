package main

import (
	"flag"
	"fmt"

	"github.com/example/wall/internal/wallpaper"
)

type infoCmd struct {
	*root
	fs *flag.FlagSet
}

func (i *infoCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *infoCmd) Program() string {
	return i.subProgram("info")
}

func parseInfoCmd(args []string, r *root) (*infoCmd, error) {
	fs := flag.NewFlagSet("info", r.fs.ErrorHandling())
	i := &infoCmd{root: r, fs: fs}
	fs.Usage = usageFunc(i)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *infoCmd) Run() error {
	informer, ok := i.backend.(wallpaper.Informer)
	if !ok {
		return fmt.Errorf("info: %w", wallpaper.ErrUnsupported)
	}
	return informer.Info(i.stdout, i.options())
}
