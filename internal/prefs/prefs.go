// Package prefs manages persistent user preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mholloway/medley/internal/feed"
)

// ViewMode selects how the unified feed renders.
type ViewMode string

const (
	ViewModeNormal    ViewMode = "normal"
	ViewModeDraggable ViewMode = "draggable"
)

// Preferences is the persistent user configuration
type Preferences struct {
	// Categories the user wants in the unified feed
	Categories []feed.Type `json:"categories"`

	// UI
	DarkMode bool     `json:"dark_mode"`
	Language string   `json:"language"`
	ViewMode ViewMode `json:"view_mode"`

	// Notifications on new content
	Notifications bool `json:"notifications"`
}

// DefaultPreferences returns sensible defaults
func DefaultPreferences() *Preferences {
	return &Preferences{
		Categories:    append([]feed.Type(nil), feed.Types...),
		DarkMode:      true,
		Language:      "en",
		ViewMode:      ViewModeNormal,
		Notifications: false,
	}
}

// Enabled reports whether a content type is selected for the unified feed.
func (p *Preferences) Enabled(t feed.Type) bool {
	for _, c := range p.Categories {
		if c == t {
			return true
		}
	}
	return false
}

// Path returns the path to the preferences file
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".medley", "config.json")
}

// Load reads preferences from disk, or returns defaults
func Load() (*Preferences, error) {
	return LoadFrom(Path())
}

// LoadFrom reads preferences from the given path. A missing or corrupt file
// yields defaults without error.
func LoadFrom(path string) (*Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPreferences(), nil
		}
		return nil, err
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPreferences(), nil
	}
	p.normalize()
	return &p, nil
}

// Save writes preferences to disk
func (p *Preferences) Save() error {
	return p.SaveTo(Path())
}

// SaveTo writes preferences to the given path.
func (p *Preferences) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// normalize repairs a loaded document: unknown categories are dropped and
// empty or missing fields fall back to defaults.
func (p *Preferences) normalize() {
	var categories []feed.Type
	for _, c := range p.Categories {
		if c.Valid() {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		categories = append([]feed.Type(nil), feed.Types...)
	}
	p.Categories = categories

	if p.Language == "" {
		p.Language = "en"
	}
	if p.ViewMode != ViewModeNormal && p.ViewMode != ViewModeDraggable {
		p.ViewMode = ViewModeNormal
	}
}
