package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thelegendaryrichman/nova/pkg/types"
)

// DefaultLocationURL is an IP geolocation endpoint answering with
// {"latitude": ..., "longitude": ...}.
const DefaultLocationURL = "https://ipapi.co/json/"

// Locator resolves approximate coordinates once at startup.
type Locator struct {
	state      *State
	url        string
	fixed      *types.Coordinates
	httpClient *http.Client
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithLocationURL sets the lookup endpoint.
func WithLocationURL(url string) LocatorOption {
	return func(l *Locator) {
		if url != "" {
			l.url = url
		}
	}
}

// WithFixedCoordinates skips the lookup and reports c.
func WithFixedCoordinates(c types.Coordinates) LocatorOption {
	return func(l *Locator) {
		l.fixed = &c
	}
}

// WithLocatorHTTPClient sets the client used for the lookup.
func WithLocatorHTTPClient(c *http.Client) LocatorOption {
	return func(l *Locator) {
		l.httpClient = c
	}
}

// NewLocator creates a locator writing to state.
func NewLocator(state *State, opts ...LocatorOption) *Locator {
	l := &Locator{
		state:      state,
		url:        DefaultLocationURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type locationReply struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Locate resolves coordinates and stores them on the state. On failure the
// state is left untouched and the error is returned.
func (l *Locator) Locate(ctx context.Context) (*types.Coordinates, error) {
	if l.fixed != nil {
		c := *l.fixed
		l.state.SetCoords(c)
		return &c, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create location request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location lookup failed with status %d", resp.StatusCode)
	}

	var reply locationReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode location reply: %w", err)
	}
	if reply.Error {
		return nil, fmt.Errorf("location lookup refused: %s", reply.Reason)
	}
	if reply.Latitude == nil || reply.Longitude == nil {
		return nil, fmt.Errorf("location reply has no coordinates")
	}

	c := types.Coordinates{Latitude: *reply.Latitude, Longitude: *reply.Longitude}
	if err := validateCoordinates(c); err != nil {
		return nil, err
	}
	l.state.SetCoords(c)
	return &c, nil
}

// Run performs one lookup and logs a failure. Coordinates stay unset on failure.
func (l *Locator) Run(ctx context.Context) {
	c, err := l.Locate(ctx)
	if err != nil {
		debugLog.Warnf("Location unavailable: %v", err)
		return
	}
	debugLog.Infof("Location resolved: %.2f, %.2f", c.Latitude, c.Longitude)
}

func validateCoordinates(c types.Coordinates) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range", c.Longitude)
	}
	return nil
}
