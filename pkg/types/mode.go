package types

import (
	"fmt"
	"strings"
)

// Mode selects the request profile a tab dispatches with.
type Mode string

const (
	ModeFast   Mode = "fast"   // ModeFast is the low-latency profile with no tools.
	ModeSearch Mode = "search" // ModeSearch enables live web search and maps grounding.
	ModeDeep   Mode = "deep"   // ModeDeep requests high-effort structured reasoning.
)

// Modes lists every profile in selector order.
var Modes = []Mode{ModeFast, ModeSearch, ModeDeep}

// ParseMode converts a user-supplied name into a Mode.
// "live" is accepted as an alias for the search profile.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast":
		return ModeFast, nil
	case "search", "live":
		return ModeSearch, nil
	case "deep":
		return ModeDeep, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected fast, search or deep)", s)
	}
}

// String returns the mode identifier.
func (m Mode) String() string {
	return string(m)
}

// Label returns the short name shown on the mode selector.
func (m Mode) Label() string {
	switch m {
	case ModeSearch:
		return "Live"
	case ModeDeep:
		return "Deep"
	default:
		return "Fast"
	}
}

// Next returns the mode that follows m in selector order, wrapping around.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeFast
}

// Valid reports whether m is one of the known profiles.
func (m Mode) Valid() bool {
	switch m {
	case ModeFast, ModeSearch, ModeDeep:
		return true
	}
	return false
}
