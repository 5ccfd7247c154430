package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# wall settings
log_level = Debug

[x11]
display = ":1.0"

[notify]
set = true
save: false
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log_level 'debug', got '%s'", cfg.LogLevel)
	}

	if cfg.X11.Display != ":1.0" {
		t.Errorf("Expected display ':1.0', got '%s'", cfg.X11.Display)
	}

	if !cfg.Notify.Set {
		t.Error("Expected notify.set to be true")
	}
	if cfg.Notify.Save {
		t.Error("Expected notify.save to be false")
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"log_level = loud\n",
		"[notify]\nset = sometimes\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q): expected an error", input)
		}
	}
}

func TestParseIgnoresUnknownSections(t *testing.T) {
	cfg, err := Parse(strings.NewReader("[theme.dark]\nBackground = #000000\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *cfg != *New() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestCircular(t *testing.T) {
	input := `log_level = info

[x11]
display = localhost:10.0

[notify]
set = true
save = true
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare
	if *cfg != *cfg2 {
		t.Errorf("Config mismatch: %+v vs %+v", cfg, cfg2)
	}
}

func TestLoaderPrefersOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	if err := os.WriteFile(path, []byte("[x11]\ndisplay = :7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("v1.0.0", path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.X11.Display != ":7" {
		t.Errorf("Expected display ':7', got '%s'", cfg.X11.Display)
	}
}

func TestLoaderDevFile(t *testing.T) {
	dir := t.TempDir()
	if wd, err := os.Getwd(); err != nil {
		t.Fatal(err)
	} else if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	} else {
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	if err := os.WriteFile(filepath.Join(dir, devFileName), []byte("log_level = error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("Expected log_level 'error', got '%s'", cfg.LogLevel)
	}

	// Release builds ignore the working directory.
	if got := NewLoader("v1.0.0", "").GetConfigPath(); got == filepath.Join(dir, devFileName) {
		t.Errorf("Release build picked up %q", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	cfg := New()
	cfg.LogLevel = "debug"
	cfg.Notify.Save = true
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := NewLoader("v1.0.0", path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Loaded %+v, saved %+v", got, cfg)
	}
}
