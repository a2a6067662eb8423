package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.Extension != ".com" {
		t.Errorf("Expected Extension=.com, got %s", cfg.Output.Extension)
	}
	if cfg.Assembly.DefaultOrigin != 0 {
		t.Errorf("Expected DefaultOrigin=0, got %d", cfg.Assembly.DefaultOrigin)
	}
	if cfg.Verbose.StatsFormat != "text" {
		t.Errorf("Expected StatsFormat=text, got %s", cfg.Verbose.StatsFormat)
	}
	if cfg.Mnemonics.OverridePath != "" {
		t.Errorf("Expected empty OverridePath, got %s", cfg.Mnemonics.OverridePath)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "masm16" && path != "config.toml" {
			t.Errorf("Expected path in masm16 directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Output.Extension = ".bin"
	cfg.Assembly.DefaultOrigin = 0x100
	cfg.Verbose.StatsFormat = "json"
	cfg.Mnemonics.OverridePath = "extra.toml"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Output.Extension != ".bin" {
		t.Errorf("Expected Extension=.bin, got %s", loaded.Output.Extension)
	}
	if loaded.Assembly.DefaultOrigin != 0x100 {
		t.Errorf("Expected DefaultOrigin=0x100, got %#x", loaded.Assembly.DefaultOrigin)
	}
	if loaded.Verbose.StatsFormat != "json" {
		t.Errorf("Expected StatsFormat=json, got %s", loaded.Verbose.StatsFormat)
	}
	if loaded.Mnemonics.OverridePath != "extra.toml" {
		t.Errorf("Expected OverridePath=extra.toml, got %s", loaded.Mnemonics.OverridePath)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Output.Extension != ".com" {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[assembly]
default_origin = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
