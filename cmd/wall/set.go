package main

import (
	"flag"
	"fmt"

	"github.com/example/wall/internal/wallpaper"
)

type setCmd struct {
	*root
	fs      *flag.FlagSet
	grammar wallpaper.Grammar
	format  formatFlag
	path    string
}

func (s *setCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *setCmd) Program() string {
	return s.subProgram("set")
}

func (s *setCmd) Arg() string {
	return s.grammar.SetArg
}

func (s *setCmd) Formats() []string {
	return formatNames(s.grammar.SetFormats)
}

func parseSetCmd(args []string, r *root) (*setCmd, error) {
	fs := flag.NewFlagSet("set", r.fs.ErrorHandling())
	s := &setCmd{root: r, fs: fs, grammar: r.backend.Grammar()}
	s.format.allowed = s.grammar.SetFormats
	fs.Usage = usageFunc(s)
	if s.grammar.SetFormats != nil {
		fs.Var(&s.format, "format", "image format, overriding the file extension")
		fs.Var(&s.format, "f", "image format (alias)")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: s}
	}
	s.path = fs.Arg(0)
	return s, nil
}

func (s *setCmd) Run() error {
	opts := s.options()
	opts.Format = s.format.value
	if err := s.backend.Set(s.path, opts); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	s.notifySet(s.path)
	return nil
}
