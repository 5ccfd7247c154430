package main

import (
	"flag"
	"fmt"

	"github.com/example/wall/internal/wallpaper"
)

type getCmd struct {
	*root
	fs          *flag.FlagSet
	grammar     wallpaper.Grammar
	format      formatFlag
	toClipboard bool
	path        string
}

func (g *getCmd) FlagSet() *flag.FlagSet {
	return g.fs
}

func (g *getCmd) Program() string {
	return g.subProgram("get")
}

func (g *getCmd) Arg() string {
	return g.grammar.GetArg
}

func (g *getCmd) Formats() []string {
	return formatNames(g.grammar.GetFormats)
}

func parseGetCmd(args []string, r *root) (*getCmd, error) {
	fs := flag.NewFlagSet("get", r.fs.ErrorHandling())
	g := &getCmd{root: r, fs: fs, grammar: r.backend.Grammar()}
	g.format.allowed = g.grammar.GetFormats
	fs.Usage = usageFunc(g)
	if g.grammar.GetFormats != nil {
		fs.Var(&g.format, "format", "output format, overriding the file extension")
		fs.Var(&g.format, "f", "output format (alias)")
	}
	if g.grammar.Clipboard {
		fs.BoolVar(&g.toClipboard, "to-clipboard", false, "also copy the wallpaper to the clipboard, serving it until something else is copied")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	want := 0
	if g.grammar.GetArg != "" {
		want = 1
	}
	if fs.NArg() != want {
		return nil, &UsageError{of: g}
	}
	if want == 1 {
		g.path = fs.Arg(0)
	}
	return g, nil
}

func (g *getCmd) Run() error {
	opts := g.options()
	opts.Format = g.format.value
	opts.ToClipboard = g.toClipboard
	path, err := g.backend.Get(g.path, opts)
	if err != nil {
		return fmt.Errorf("failed to get wallpaper: %w", err)
	}
	fmt.Fprintln(g.stdout, path)
	if g.path != "" {
		g.notifySave(path)
	}
	return nil
}
