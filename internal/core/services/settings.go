package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyUserAgent         = "fetch.user_agent"
	keyTimeoutSeconds    = "fetch.timeout_seconds"
	keyRequestsPerSecond = "fetch.requests_per_second"
	keyBurst             = "fetch.burst"
	keyConcurrency       = "fetch.concurrency"
	keyHeaders           = "fetch.headers"
	keyStripFootnotes    = "extract.strip_footnotes"
	keyTopic             = "extract.topic"
	keyDataClasses       = "extract.data_classes"
	keyHeaderKeywords    = "extract.header_keywords"
	keySizeCap           = "extract.size_cap"
	keyOutputFormat      = "output.format"
	keyOutputDir         = "output.dir"
	keyHistoryEnabled    = "history.enabled"
	keyHistoryDir        = "history.dir"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
	kindFormat
)

type settingDef struct {
	key         string
	kind        settingKind
	description string
}

// settingDefs lists every configurable key in display order.
var settingDefs = []settingDef{
	{keyUserAgent, kindString, "User-Agent header sent with web requests"},
	{keyTimeoutSeconds, kindInt, "Timeout for a single web request, in seconds"},
	{keyRequestsPerSecond, kindFloat, "Sustained web request rate (0 disables limiting)"},
	{keyBurst, kindInt, "Maximum burst of web requests"},
	{keyConcurrency, kindInt, "Number of sources fetched at once"},
	{keyHeaders, kindList, "Extra request headers, comma-separated \"Key: Value\" pairs"},
	{keyStripFootnotes, kindBool, "Remove bracketed footnote markers such as [12]"},
	{keyTopic, kindList, "Comma-separated keywords describing the wanted table"},
	{keyDataClasses, kindList, "Comma-separated class names that mark a data table"},
	{keyHeaderKeywords, kindList, "Comma-separated words expected in a relevant header row"},
	{keySizeCap, kindInt, "Maximum points awarded for table size"},
	{keyOutputFormat, kindFormat, "Default output format (csv, tsv, json, markdown)"},
	{keyOutputDir, kindString, "Directory that --all writes into"},
	{keyHistoryEnabled, kindBool, "Save every extraction to the history database"},
	{keyHistoryDir, kindString, "History database directory (empty for ~/.htmltab/data)"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Fetch: domain.FetchSettings{
			UserAgent:         s.getString(keyUserAgent, defaults.Fetch.UserAgent),
			Timeout:           time.Duration(s.getInt(keyTimeoutSeconds, int(defaults.Fetch.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Fetch.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, defaults.Fetch.Burst),
			Concurrency:       s.getInt(keyConcurrency, defaults.Fetch.Concurrency),
			Headers:           s.getList(keyHeaders, defaults.Fetch.Headers),
		},
		Extract: domain.ExtractSettings{
			StripFootnotes: s.getBool(keyStripFootnotes, defaults.Extract.StripFootnotes),
			Topic:          s.getList(keyTopic, defaults.Extract.Topic),
			DataClasses:    s.getList(keyDataClasses, defaults.Extract.DataClasses),
			HeaderKeywords: s.getList(keyHeaderKeywords, defaults.Extract.HeaderKeywords),
			SizeCap:        s.getInt(keySizeCap, defaults.Extract.SizeCap),
		},
		Output: domain.OutputSettings{
			Format: s.getFormat(defaults.Output.Format),
			Dir:    s.getString(keyOutputDir, defaults.Output.Dir),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
			Dir:     s.getString(keyHistoryDir, defaults.History.Dir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyUserAgent, settings.Fetch.UserAgent},
		{keyTimeoutSeconds, int(settings.Fetch.Timeout / time.Second)},
		{keyRequestsPerSecond, settings.Fetch.RequestsPerSecond},
		{keyBurst, settings.Fetch.Burst},
		{keyConcurrency, settings.Fetch.Concurrency},
		{keyHeaders, nonNil(settings.Fetch.Headers)},
		{keyStripFootnotes, settings.Extract.StripFootnotes},
		{keyTopic, nonNil(settings.Extract.Topic)},
		{keyDataClasses, nonNil(settings.Extract.DataClasses)},
		{keyHeaderKeywords, nonNil(settings.Extract.HeaderKeywords)},
		{keySizeCap, settings.Extract.SizeCap},
		{keyOutputFormat, settings.Output.Format.String()},
		{keyOutputDir, settings.Output.Dir},
		{keyHistoryEnabled, settings.History.Enabled},
		{keyHistoryDir, settings.History.Dir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it.
// List values are comma-separated; an empty value clears the list.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(def, value)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Entries returns every known setting with its current value.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		keyUserAgent:         settings.Fetch.UserAgent,
		keyTimeoutSeconds:    strconv.Itoa(int(settings.Fetch.Timeout / time.Second)),
		keyRequestsPerSecond: strconv.FormatFloat(settings.Fetch.RequestsPerSecond, 'g', -1, 64),
		keyBurst:             strconv.Itoa(settings.Fetch.Burst),
		keyConcurrency:       strconv.Itoa(settings.Fetch.Concurrency),
		keyHeaders:           strings.Join(settings.Fetch.Headers, ", "),
		keyStripFootnotes:    strconv.FormatBool(settings.Extract.StripFootnotes),
		keyTopic:             strings.Join(settings.Extract.Topic, ", "),
		keyDataClasses:       strings.Join(settings.Extract.DataClasses, ", "),
		keyHeaderKeywords:    strings.Join(settings.Extract.HeaderKeywords, ", "),
		keySizeCap:           strconv.Itoa(settings.Extract.SizeCap),
		keyOutputFormat:      settings.Output.Format.String(),
		keyOutputDir:         settings.Output.Dir,
		keyHistoryEnabled:    strconv.FormatBool(settings.History.Enabled),
		keyHistoryDir:        settings.History.Dir,
	}

	entries := make([]driving.SettingEntry, 0, len(settingDefs))
	for _, def := range settingDefs {
		entries = append(entries, driving.SettingEntry{
			Key:         def.key,
			Value:       values[def.key],
			Description: def.description,
		})
	}
	return entries, nil
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case settings.Fetch.Timeout <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyTimeoutSeconds)
	case settings.Fetch.RequestsPerSecond < 0:
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyRequestsPerSecond)
	case settings.Fetch.Burst < 1:
		return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, keyBurst)
	case settings.Fetch.Concurrency < 1:
		return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, keyConcurrency)
	case settings.Extract.SizeCap < 1:
		return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, keySizeCap)
	case !settings.Output.Format.IsValid():
		return fmt.Errorf("%w: %s %q", domain.ErrUnsupportedFormat, keyOutputFormat, settings.Output.Format)
	}
	for _, h := range settings.Fetch.Headers {
		if err := validateHeader(h); err != nil {
			return err
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getList returns the stored list, which may be deliberately empty.
func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	list := s.configStore.GetStringSlice(key)
	if len(list) == 0 {
		return nil
	}
	return list
}

func (s *SettingsService) getFormat(defaultVal domain.OutputFormat) domain.OutputFormat {
	val := s.configStore.GetString(keyOutputFormat)
	if val == "" {
		return defaultVal
	}
	format, err := domain.ParseOutputFormat(val)
	if err != nil {
		return defaultVal
	}
	return format
}

func lookupSetting(key string) (settingDef, bool) {
	for _, def := range settingDefs {
		if def.key == key {
			return def, true
		}
	}
	return settingDef{}, false
}

func parseSetting(def settingDef, value string) (any, error) {
	value = strings.TrimSpace(value)
	invalid := func(want string) error {
		return fmt.Errorf("%w: %s expects %s, got %q", domain.ErrInvalidInput, def.key, want, value)
	}

	switch def.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, invalid("a non-negative integer")
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, invalid("a non-negative number")
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, invalid("true or false")
		}
		return b, nil
	case kindList:
		list := splitList(value)
		if def.key == keyHeaders {
			for _, h := range list {
				if err := validateHeader(h); err != nil {
					return nil, err
				}
			}
		}
		return list, nil
	case kindFormat:
		format, err := domain.ParseOutputFormat(value)
		if err != nil {
			return nil, err
		}
		return format.String(), nil
	default:
		return value, nil
	}
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func validateHeader(h string) error {
	key, _, ok := strings.Cut(h, ":")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: header %q must look like \"Key: Value\"", domain.ErrInvalidInput, h)
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
