package config

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// SectionIDEnvironment is the identifier for the environment section
const SectionIDEnvironment = "environment"

// EnvironmentSection controls the connectivity probe, location lookup and
// latency display. FixedCoords, when set, replaces the location lookup.
type EnvironmentSection struct {
	ProbeAddress    string
	ProbeInterval   time.Duration
	ProbeTimeout    time.Duration
	LocationEnabled bool
	LocationURL     string
	FixedCoords     *types.Coordinates
	LatencyInterval time.Duration
	mu              sync.RWMutex
}

// NewEnvironmentSection creates a section holding the built-in defaults.
func NewEnvironmentSection() *EnvironmentSection {
	s := &EnvironmentSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *EnvironmentSection) ID() string {
	return SectionIDEnvironment
}

// Title returns the section title.
func (s *EnvironmentSection) Title() string {
	return "Environment"
}

// Description returns the section description.
func (s *EnvironmentSection) Description() string {
	return "Connectivity probe target and timing, location lookup, and the latency display interval."
}

// Data returns the current configuration data. Durations are stored as
// strings such as "5s".
func (s *EnvironmentSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := map[string]any{
		"probe_address":    s.ProbeAddress,
		"probe_interval":   s.ProbeInterval.String(),
		"probe_timeout":    s.ProbeTimeout.String(),
		"location_enabled": s.LocationEnabled,
		"location_url":     s.LocationURL,
		"latency_interval": s.LatencyInterval.String(),
	}
	if s.FixedCoords != nil {
		data["latitude"] = s.FixedCoords.Latitude
		data["longitude"] = s.FixedCoords.Longitude
	}
	return data
}

// SetData updates the configuration from the provided data.
func (s *EnvironmentSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["probe_address"].(string); ok && v != "" {
		s.ProbeAddress = v
	}
	if v, ok := data["location_url"].(string); ok && v != "" {
		s.LocationURL = v
	}
	if v, ok := data["location_enabled"].(bool); ok {
		s.LocationEnabled = v
	}

	durations := map[string]*time.Duration{
		"probe_interval":   &s.ProbeInterval,
		"probe_timeout":    &s.ProbeTimeout,
		"latency_interval": &s.LatencyInterval,
	}
	for key, dst := range durations {
		raw, exists := data[key]
		if !exists || raw == "" {
			continue
		}
		d, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	lat, hasLat := floatValue(data["latitude"])
	lon, hasLon := floatValue(data["longitude"])
	switch {
	case hasLat && hasLon:
		s.FixedCoords = &types.Coordinates{Latitude: lat, Longitude: lon}
	case hasLat || hasLon:
		return fmt.Errorf("latitude and longitude must be set together")
	}

	return nil
}

// Validate validates the current configuration.
func (s *EnvironmentSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, _, err := net.SplitHostPort(s.ProbeAddress); err != nil {
		return fmt.Errorf("probe_address must be host:port: %w", err)
	}
	if s.ProbeInterval <= 0 || s.ProbeTimeout <= 0 || s.LatencyInterval <= 0 {
		return fmt.Errorf("intervals and timeouts must be positive")
	}
	if s.ProbeTimeout > s.ProbeInterval {
		return fmt.Errorf("probe_timeout (%s) must not exceed probe_interval (%s)", s.ProbeTimeout, s.ProbeInterval)
	}
	if c := s.FixedCoords; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return fmt.Errorf("coordinates %.4f, %.4f out of range", c.Latitude, c.Longitude)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *EnvironmentSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProbeAddress = environment.DefaultProbeAddress
	s.ProbeInterval = environment.DefaultProbeInterval
	s.ProbeTimeout = environment.DefaultProbeTimeout
	s.LocationEnabled = true
	s.LocationURL = environment.DefaultLocationURL
	s.FixedCoords = nil
	s.LatencyInterval = environment.DefaultLatencyInterval
}

// MonitorOptions returns options for environment.NewConnectivityMonitor.
// Unless probe_address was changed from the default, the monitor probes the
// host behind providerURL so connectivity tracks the configured backend.
func (s *EnvironmentSection) MonitorOptions(providerURL string) []environment.MonitorOption {
	s.mu.RLock()
	defer s.mu.RUnlock()

	address := s.ProbeAddress
	if address == environment.DefaultProbeAddress {
		if derived := environment.ProbeAddressForURL(providerURL); derived != "" {
			address = derived
		}
	}
	return []environment.MonitorOption{
		environment.WithProbeAddress(address),
		environment.WithProbeInterval(s.ProbeInterval),
		environment.WithProbeTimeout(s.ProbeTimeout),
	}
}

// LocatorOptions returns options for environment.NewLocator.
func (s *EnvironmentSection) LocatorOptions() []environment.LocatorOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := []environment.LocatorOption{environment.WithLocationURL(s.LocationURL)}
	if s.FixedCoords != nil {
		opts = append(opts, environment.WithFixedCoordinates(*s.FixedCoords))
	}
	return opts
}

// LatencyOptions returns options for environment.NewLatencySimulator.
func (s *EnvironmentSection) LatencyOptions() []environment.LatencyOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []environment.LatencyOption{environment.WithLatencyInterval(s.LatencyInterval)}
}

// IsLocationEnabled reports whether the locator should run.
func (s *EnvironmentSection) IsLocationEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LocationEnabled
}
