package driving

import "github.com/custodia-labs/htmltab/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses and stores a single setting by key.
	Set(key, value string) error

	// Entries returns every known setting with its current value.
	Entries() ([]SettingEntry, error)

	// Validate checks that current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}

// SettingEntry describes one configurable key.
type SettingEntry struct {
	// Key is the dotted config key, e.g. "fetch.timeout_seconds".
	Key string

	// Value is the current value formatted for display.
	Value string

	// Description explains the setting.
	Description string
}
