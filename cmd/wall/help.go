package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/example/wall/internal/imagecodec"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
		"join": strings.Join,
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of); err != nil {
		log.Error("rendering help template", "template", e.of.Template(), "err", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc renders the command's help for flag parse failures and -h.
func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: h}).Error())
	}
}

func formatNames(formats []imagecodec.Format) []string {
	if formats == nil {
		return nil
	}
	return imagecodec.Names(formats)
}

type helpCmd struct{ r *root }

func (h *helpCmd) Run() error {
	fmt.Fprint(h.r.stdout, (&UsageError{of: h.r}).Error())
	return nil
}

func (r *root) Template() string {
	return "root.txt"
}

func (s *setCmd) Template() string {
	return "set.txt"
}

func (g *getCmd) Template() string {
	return "get.txt"
}

func (i *infoCmd) Template() string {
	return "info.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}
