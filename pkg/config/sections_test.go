package config

import (
	"testing"
	"time"

	"github.com/thelegendaryrichman/nova/pkg/environment"
)

func TestLLMSection_SetData(t *testing.T) {
	s := NewLLMSection()

	err := s.SetData(map[string]any{
		"provider":             "openai",
		"api_key":              "k",
		"base_url":             "http://localhost:8080/v1",
		"fast_model":           "gpt-4o-mini",
		"deep_model":           "o3",
		"deep_thinking_budget": float64(4096), // JSON numbers
	})
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	if s.GetProvider() != "openai" || s.GetAPIKey() != "k" || s.GetBaseURL() != "http://localhost:8080/v1" {
		t.Errorf("Unexpected values: %+v", s.Data())
	}
	models := s.GetModels()
	if models.Fast != "gpt-4o-mini" || models.Search != "" || models.Deep != "o3" {
		t.Errorf("Unexpected models: %+v", models)
	}
	if s.GetDeepThinkingBudget() != 4096 {
		t.Errorf("Expected budget 4096, got %d", s.GetDeepThinkingBudget())
	}

	if err := s.SetData(map[string]any{"deep_thinking_budget": 1.5}); err == nil {
		t.Error("Expected error for fractional budget")
	}
	if err := s.SetData(nil); err != nil {
		t.Errorf("nil data should be ignored: %v", err)
	}
}

func TestLLMSection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{"defaults", nil, false},
		{"gemini", map[string]any{"provider": "gemini"}, false},
		{"openai", map[string]any{"provider": "openai"}, false},
		{"unknown provider", map[string]any{"provider": "anthropic"}, true},
		{"negative budget", map[string]any{"deep_thinking_budget": -1}, true},
		{"largest budget", map[string]any{"deep_thinking_budget": float64(MaxThinkingBudget)}, false},
		{"budget beyond int32", map[string]any{"deep_thinking_budget": float64(3000000000)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLMSection()
			if err := s.SetData(tt.data); err != nil {
				t.Fatalf("SetData failed: %v", err)
			}
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLLMSection_Reset(t *testing.T) {
	s := NewLLMSection()
	s.SetData(map[string]any{"provider": "openai", "api_key": "k", "deep_thinking_budget": 10})
	s.Reset()

	if s.GetProvider() != "" || s.GetAPIKey() != "" || s.GetDeepThinkingBudget() != 0 {
		t.Errorf("Reset left values: %+v", s.Data())
	}
}

func TestEnvironmentSection_Defaults(t *testing.T) {
	s := NewEnvironmentSection()

	if s.ProbeAddress != environment.DefaultProbeAddress {
		t.Errorf("Unexpected probe address %q", s.ProbeAddress)
	}
	if s.ProbeInterval != environment.DefaultProbeInterval || s.ProbeTimeout != environment.DefaultProbeTimeout {
		t.Errorf("Unexpected probe timing %s/%s", s.ProbeInterval, s.ProbeTimeout)
	}
	if !s.IsLocationEnabled() || s.FixedCoords != nil {
		t.Error("Location lookup should be enabled with no fixed coordinates")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
	if len(s.MonitorOptions("")) != 3 || len(s.LocatorOptions()) != 1 || len(s.LatencyOptions()) != 1 {
		t.Error("Unexpected option counts")
	}
}

func TestEnvironmentSection_MonitorTargetsProvider(t *testing.T) {
	s := NewEnvironmentSection()
	state := environment.NewState(true)

	m := environment.NewConnectivityMonitor(state, s.MonitorOptions("https://api.openai.com/v1")...)
	if m.Address() != "api.openai.com:443" {
		t.Errorf("Expected provider host probe, got %s", m.Address())
	}

	m = environment.NewConnectivityMonitor(state, s.MonitorOptions("")...)
	if m.Address() != environment.DefaultProbeAddress {
		t.Errorf("Expected default probe without a provider URL, got %s", m.Address())
	}

	s.ProbeAddress = "1.1.1.1:53"
	m = environment.NewConnectivityMonitor(state, s.MonitorOptions("https://api.openai.com/v1")...)
	if m.Address() != "1.1.1.1:53" {
		t.Errorf("Configured probe address should win, got %s", m.Address())
	}
}

func TestEnvironmentSection_SetData(t *testing.T) {
	s := NewEnvironmentSection()

	err := s.SetData(map[string]any{
		"probe_address":    "1.1.1.1:53",
		"probe_interval":   "10s",
		"probe_timeout":    2,    // seconds, YAML int
		"latency_interval": 0.5,  // seconds, float
		"latitude":         51.5, // fixed coordinates
		"longitude":        -1,
	})
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	if s.ProbeAddress != "1.1.1.1:53" {
		t.Errorf("Unexpected probe address %q", s.ProbeAddress)
	}
	if s.ProbeInterval != 10*time.Second || s.ProbeTimeout != 2*time.Second || s.LatencyInterval != 500*time.Millisecond {
		t.Errorf("Unexpected durations %s %s %s", s.ProbeInterval, s.ProbeTimeout, s.LatencyInterval)
	}
	if s.FixedCoords == nil || s.FixedCoords.Latitude != 51.5 || s.FixedCoords.Longitude != -1 {
		t.Errorf("Unexpected fixed coordinates %+v", s.FixedCoords)
	}
	if len(s.LocatorOptions()) != 2 {
		t.Error("Fixed coordinates should add a locator option")
	}

	data := s.Data()
	if data["probe_interval"] != "10s" || data["latitude"] != 51.5 {
		t.Errorf("Data() round trip failed: %v", data)
	}
}

func TestEnvironmentSection_SetDataErrors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"bad duration", map[string]any{"probe_interval": "soon"}},
		{"bad duration type", map[string]any{"probe_timeout": true}},
		{"latitude only", map[string]any{"latitude": 10.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewEnvironmentSection().SetData(tt.data); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestEnvironmentSection_Validate(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"address without port", map[string]any{"probe_address": "example.com"}},
		{"timeout exceeds interval", map[string]any{"probe_interval": "1s", "probe_timeout": "2s"}},
		{"negative interval", map[string]any{"latency_interval": "-1s"}},
		{"coordinates out of range", map[string]any{"latitude": 91.0, "longitude": 0.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewEnvironmentSection()
			if err := s.SetData(tt.data); err != nil {
				t.Fatalf("SetData failed: %v", err)
			}
			if err := s.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
