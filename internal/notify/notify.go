// Package notify raises desktop notifications when wall changes or saves
// a wallpaper.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/example/wall/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSet fires after a new wallpaper is installed.
	EventSet Event = "set"
	// EventSave fires after the current wallpaper is written to disk.
	EventSave Event = "save"
)

// Preferences describes notification text, loaded from the environment.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "wall",
		Templates: map[Event]string{
			EventSet:  "Wallpaper set to %s",
			EventSave: "Wallpaper saved to %s",
		},
	}
}

// LoadPreferences applies WALL_NOTIFY_* overrides to the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("WALL_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for key, event := range map[string]Event{
		"WALL_NOTIFY_SET_TEXT":  EventSet,
		"WALL_NOTIFY_SAVE_TEXT": EventSave,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[event] = v
		}
	}
	return prefs
}

var send = platform.Notify

// Notifier sends OS-level notifications for the enabled events. A nil
// Notifier is valid and does nothing.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Set reports a newly installed wallpaper, using the image as the icon.
func (n *Notifier) Set(path string) {
	n.dispatch(EventSet, path)
}

// Save reports a wallpaper written to path.
func (n *Notifier) Save(path string) {
	n.dispatch(EventSave, path)
}

func (n *Notifier) dispatch(event Event, path string) {
	if n == nil || !n.enabled[event] {
		return
	}
	template := strings.TrimSpace(n.prefs.Templates[event])
	if template == "" {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(detail); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	body := strings.TrimSpace(fmt.Sprintf(template, detail))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Warn("notification failed", "event", event, "err", err)
	}
}
