package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Upstream UpstreamSettings `json:"upstream"`
	Cache    CacheSettings    `json:"cache"`
	Merge    MergeSettings    `json:"merge"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// UpstreamSettings points at the IMDb API service. Both values default empty;
// lookups fail upstream until they are filled in, presence is not validated
// ahead of time.
type UpstreamSettings struct {
	APIBaseURL string `json:"apiBaseUrl"`
	APIKey     string `json:"apiKey"`
	Language   string `json:"language"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// MergeSettings is the feature mask controlling which resolved fields are
// copied into a destination item. It never affects what is fetched or cached.
type MergeSettings struct {
	UsePlot        bool `json:"usePlot"`
	UseEpisodePlot bool `json:"useEpisodePlot"`
	UseYear        bool `json:"useYear"`
	UseGenres      bool `json:"useGenres"`
	UseKeywords    bool `json:"useKeywords"`
	UseRating      bool `json:"useRating"`
}

// LogConfig represents log file rotation configuration.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7878},
		Upstream: UpstreamSettings{APIBaseURL: "", APIKey: "", Language: "en"},
		Cache:    CacheSettings{Directory: "cache"},
		Merge: MergeSettings{
			UsePlot:        true,
			UseEpisodePlot: true,
			UseYear:        true,
			UseGenres:      true,
			UseKeywords:    true,
			UseRating:      true,
		},
		Log: LogConfig{
			File:       "cache/logs/titledex.log",
			MaxSize:    50, // MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Settings{}, err
	}

	// Decode into a raw map first so sections absent from older config files
	// can be backfilled with defaults instead of zero values.
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, err
	}

	defaults := DefaultSettings()
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}

	if _, ok := raw["merge"]; !ok {
		s.Merge = defaults.Merge
	}
	if _, ok := raw["server"]; !ok {
		s.Server = defaults.Server
	}
	if _, ok := raw["cache"]; !ok {
		s.Cache = defaults.Cache
	}
	if s.Cache.Directory == "" {
		s.Cache.Directory = defaults.Cache.Directory
	}
	if s.Upstream.Language == "" {
		s.Upstream.Language = defaults.Upstream.Language
	}
	if _, ok := raw["log"]; !ok {
		s.Log = defaults.Log
	}

	return s, nil
}

// Save writes settings atomically (temp file + rename).
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
