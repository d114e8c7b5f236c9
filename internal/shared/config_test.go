package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "https://equipmentanalyzer.pythonanywhere.com/api" {
			t.Errorf("unexpected default base URL %s", config.API.BaseURL)
		}

		if config.Storage.Path != "./eqviz.db" {
			t.Errorf("expected storage path ./eqviz.db, got %s", config.Storage.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.API.TimeoutSeconds != 60 {
			t.Errorf("expected timeout 60, got %d", config.API.TimeoutSeconds)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Storage.Path != DefaultConfig().Storage.Path {
			t.Errorf("created config storage path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[api]
base_url = "http://localhost:8000/api"
timeout_seconds = 5

[storage]
path = "/custom/eqviz.db"

[server]
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://localhost:8000/api" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.API.TimeoutSeconds != 5 {
			t.Errorf("expected timeout 5, got %d", config.API.TimeoutSeconds)
		}
		if config.Storage.Path != "/custom/eqviz.db" {
			t.Errorf("expected storage path /custom/eqviz.db, got %s", config.Storage.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected host to keep default, got %s", config.Server.Host)
		}
		if config.API.RequestsPerSecond != 2.0 {
			t.Errorf("expected requests_per_second to keep default, got %v", config.API.RequestsPerSecond)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		tc := []struct {
			name    string
			content string
		}{
			{name: "malformed toml", content: "[api\nbase_url ="},
			{name: "empty base url", content: "[api]\nbase_url = \"\"\n"},
			{name: "negative timeout", content: "[api]\ntimeout_seconds = -1\n"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(APIURLEnv, "http://override.test/api")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.BaseURL != "http://override.test/api" {
			t.Errorf("expected env override, got %s", config.API.BaseURL)
		}
	})

	t.Run("Addr", func(t *testing.T) {
		s := ServerConfig{Host: "0.0.0.0", Port: 9000}
		if s.Addr() != "0.0.0.0:9000" {
			t.Errorf("unexpected addr %s", s.Addr())
		}
	})
}
