package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewFileStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("")
	if err != nil {
		t.Fatalf("NewFileStore with empty path failed: %v", err)
	}

	want := filepath.Join(home, ".nova", "config.yaml")
	if store.Path() != want {
		t.Errorf("Expected default path %s, got %s", want, store.Path())
	}
	if !store.IsYAML() {
		t.Error("Default store should be YAML")
	}
	if store.IsModified() {
		t.Error("New store should not be modified")
	}
}

func TestFileStore_Format(t *testing.T) {
	tests := []struct {
		name string
		file string
		yaml bool
	}{
		{"yaml", "config.yaml", true},
		{"yml", "config.YML", true},
		{"json", "config.json", false},
		{"no extension", "config", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &FileStore{path: filepath.Join(t.TempDir(), tt.file)}
			if store.IsYAML() != tt.yaml {
				t.Errorf("IsYAML() = %v, want %v", store.IsYAML(), tt.yaml)
			}
		})
	}
}

func TestFileStore_LoadYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: "1.0"
sections:
  llm:
    provider: gemini
    deep_thinking_budget: 8192
  environment:
    probe_interval: 10s
    latitude: 51.5
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	llmData, _ := store.GetSection("llm")
	if llmData["provider"] != "gemini" {
		t.Errorf("Expected provider=gemini, got %v", llmData["provider"])
	}
	if llmData["deep_thinking_budget"] != 8192 {
		t.Errorf("Expected YAML integer 8192, got %#v", llmData["deep_thinking_budget"])
	}

	envData, _ := store.GetSection("environment")
	if envData["probe_interval"] != "10s" {
		t.Errorf("Expected probe_interval=10s, got %v", envData["probe_interval"])
	}
	if envData["latitude"] != 51.5 {
		t.Errorf("Expected latitude=51.5, got %v", envData["latitude"])
	}
}

func TestFileStore_LoadEmptyYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("Empty YAML file should load: %v", err)
	}
	all, _ := store.GetAll()
	if len(all) != 0 {
		t.Errorf("Expected no sections, got %d", len(all))
	}
}

func TestFileStore_LoadJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"version": "1.0",
		"sections": map[string]map[string]interface{}{
			"llm": {"api_key": "from-file"},
		},
	})
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	section, _ := store.GetSection("llm")
	if section["api_key"] != "from-file" {
		t.Errorf("Expected api_key=from-file, got %v", section["api_key"])
	}
}

func TestFileStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("non-existent file is empty config", func(t *testing.T) {
		store := &FileStore{path: filepath.Join(dir, "missing.yaml")}
		if err := store.Load(); err != nil {
			t.Fatalf("Load should not fail for non-existent file: %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		os.WriteFile(path, []byte("{invalid json}"), 0600)
		if _, err := NewFileStore(path); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("sections: [unclosed"), 0600)
		if _, err := NewFileStore(path); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestFileStore_SaveYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	store.SetSection("llm", map[string]interface{}{"provider": "openai", "deep_thinking_budget": 1024})

	if !store.IsModified() {
		t.Error("Store should be modified after SetSection")
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.IsModified() {
		t.Error("Store should not be modified after Save")
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		t.Errorf("Expected YAML output, got JSON:\n%s", raw)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("Saved config is not valid YAML: %v", err)
	}
	if parsed.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %q", parsed.Version)
	}
	if parsed.Sections["llm"]["provider"] != "openai" {
		t.Errorf("Section not saved correctly: %v", parsed.Sections)
	}

	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should be renamed away")
	}

	// Round trip through a fresh store.
	reloaded, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	section, _ := reloaded.GetSection("llm")
	if section["deep_thinking_budget"] != 1024 {
		t.Errorf("Expected 1024 after reload, got %#v", section["deep_thinking_budget"])
	}
}

func TestFileStore_SaveJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	store, _ := NewFileStore(configPath)
	store.SetSection("environment", map[string]interface{}{"location_enabled": false})
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, _ := os.ReadFile(configPath)
	var parsed fileFormat
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("Saved config is not valid JSON: %v", err)
	}
	if parsed.Sections["environment"]["location_enabled"] != false {
		t.Errorf("Section not saved correctly: %v", parsed.Sections)
	}
}

func TestFileStore_Copies(t *testing.T) {
	store := &FileStore{data: make(map[string]map[string]interface{})}

	in := map[string]interface{}{"key": "value"}
	store.SetSection("s", in)
	in["key"] = "changed"

	out, _ := store.GetSection("s")
	if out["key"] != "value" {
		t.Error("SetSection should store a copy")
	}
	out["key"] = "changed"

	all, _ := store.GetAll()
	if all["s"]["key"] != "value" {
		t.Error("GetSection should return a copy")
	}
	all["s"]["key"] = "changed"

	again, _ := store.GetSection("s")
	if again["key"] != "value" {
		t.Error("GetAll should return a deep copy")
	}

	store.SetAll(map[string]map[string]interface{}{"a": {"k": 1}, "b": {"k": 2}})
	all, _ = store.GetAll()
	if len(all) != 2 {
		t.Errorf("Expected 2 sections after SetAll, got %d", len(all))
	}
}
