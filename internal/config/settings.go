package config

import (
	"fmt"
	"strings"
	"time"
)

// Settings is the resolved configuration for one run. It is built once by
// Load and passed by value; nothing mutates it afterwards.
type Settings struct {
	Title           string
	RememberDay     string
	Caption         string
	DaySuffix       string
	RefreshInterval time.Duration

	ResourceURL  string
	VersionURL   string
	AssetURL     string
	ChecksumsURL string

	CacheDir     string
	CacheStorage string

	NetworkTimeout time.Duration
	Debug          bool
	OutputFormat   string
	OutputJSON     bool
	WidgetPalette  string
}

// Load snapshots the current configuration into a Settings value.
func Load() (Settings, error) {
	if err := Initialize(); err != nil {
		return Settings{}, err
	}

	minutes := GetInt(KeyRefreshIntervalMinutes)
	if minutes < 0 {
		minutes = 0
	}

	s := Settings{
		Title:           strings.TrimSpace(GetString(KeyTitle)),
		RememberDay:     strings.TrimSpace(GetString(KeyRememberDay)),
		Caption:         GetString(KeyCaption),
		DaySuffix:       GetString(KeyDaySuffix),
		RefreshInterval: time.Duration(minutes) * time.Minute,
		ResourceURL:     strings.TrimSpace(GetString(KeyResourceURL)),
		VersionURL:      strings.TrimSpace(GetString(KeyUpdateVersion)),
		AssetURL:        strings.TrimSpace(GetString(KeyUpdateAssetURL)),
		ChecksumsURL:    strings.TrimSpace(GetString(KeyUpdateChecksums)),
		CacheDir:        strings.TrimSpace(GetString(KeyCacheDir)),
		CacheStorage:    strings.ToLower(strings.TrimSpace(GetString(KeyCacheStorage))),
		NetworkTimeout:  GetDuration(KeyNetworkTimeout),
		Debug:           GetBool(KeyDebug),
		OutputFormat:    strings.ToLower(strings.TrimSpace(GetString(KeyOutputFormat))),
		OutputJSON:      GetBool(KeyOutputJSON),
		WidgetPalette:   strings.ToLower(strings.TrimSpace(GetString(KeyWidgetPalette))),
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.RememberDay == "" {
		return fmt.Errorf("%s must not be empty", KeyRememberDay)
	}
	if s.ResourceURL == "" {
		return fmt.Errorf("%s must not be empty", KeyResourceURL)
	}
	switch s.CacheStorage {
	case StorageLocal, StorageSynced:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", KeyCacheStorage, StorageLocal, StorageSynced, s.CacheStorage)
	}
	switch s.OutputFormat {
	case "rich", "light", "plain":
	default:
		return fmt.Errorf("%s must be rich, light, or plain, got %q", KeyOutputFormat, s.OutputFormat)
	}
	if s.NetworkTimeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyNetworkTimeout)
	}
	return nil
}
