package session

import "github.com/thelegendaryrichman/nova/pkg/types"

// Suggestion is a preset shown on the landing view of a fresh tab.
type Suggestion struct {
	Title       string
	Description string
	Query       string
	Mode        types.Mode
}

var suggestions = []Suggestion{
	{
		Title:       "Instant Engine",
		Description: "Low-latency generation for code and logic.",
		Query:       "Write a fast sort algorithm",
		Mode:        types.ModeFast,
	},
	{
		Title:       "Local Intelligence",
		Description: "Google Maps + Search grounding enabled.",
		Query:       "Best coffee shops within walking distance",
		Mode:        types.ModeSearch,
	},
	{
		Title:       "High-Res Thinking",
		Description: "Maximum token budget for complex reasoning.",
		Query:       "Future of neural interfaces in 2050",
		Mode:        types.ModeDeep,
	},
}

// Suggestions returns the landing presets in display order.
func Suggestions() []Suggestion {
	return append([]Suggestion(nil), suggestions...)
}

// BeginSuggestion switches the active tab to s's mode and stages its query.
// The mode change sticks even when the query is rejected.
func (m *Manager) BeginSuggestion(s Suggestion) (*Request, bool) {
	m.SetMode(s.Mode)
	return m.Begin(s.Query)
}
