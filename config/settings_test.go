package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	settings, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.Server.Port != 7878 {
		t.Fatalf("unexpected default port: %d", settings.Server.Port)
	}
	if settings.Upstream.APIBaseURL != "" || settings.Upstream.APIKey != "" {
		t.Fatalf("upstream credentials must default empty: %+v", settings.Upstream)
	}
	if !settings.Merge.UsePlot || !settings.Merge.UseEpisodePlot || !settings.Merge.UseYear ||
		!settings.Merge.UseGenres || !settings.Merge.UseKeywords || !settings.Merge.UseRating {
		t.Fatalf("merge toggles must default enabled: %+v", settings.Merge)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
}

func TestLoadBackfillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"upstream":{"apiBaseUrl":"https://api.test","apiKey":"k"}}`), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	settings, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.Upstream.APIBaseURL != "https://api.test" {
		t.Fatalf("explicit value lost: %+v", settings.Upstream)
	}
	if settings.Upstream.Language != "en" {
		t.Fatalf("language not backfilled: %q", settings.Upstream.Language)
	}
	if !settings.Merge.UsePlot {
		t.Fatalf("merge section not backfilled: %+v", settings.Merge)
	}
	if settings.Cache.Directory == "" || settings.Server.Port == 0 {
		t.Fatalf("sections not backfilled: %+v", settings)
	}
}

func TestLoadRespectsExplicitMergeToggles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	payload := `{"merge":{"usePlot":false,"useEpisodePlot":true,"useYear":true,"useGenres":false,"useKeywords":true,"useRating":true}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	settings, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Merge.UsePlot || settings.Merge.UseGenres {
		t.Fatalf("explicit false toggles must survive load: %+v", settings.Merge)
	}
	if !settings.Merge.UseEpisodePlot || !settings.Merge.UseRating {
		t.Fatalf("explicit true toggles must survive load: %+v", settings.Merge)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s := DefaultSettings()
	s.Upstream.APIBaseURL = "https://api.test"
	s.Upstream.APIKey = "secret"
	s.Merge.UseKeywords = false
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Upstream.APIKey != "secret" || loaded.Merge.UseKeywords {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temporary file must not survive a save")
	}
}
