package types

import (
	"github.com/google/uuid"
)

// DefaultTabTitle is the placeholder label of a tab that has not completed a request.
const DefaultTabTitle = "New Tab"

// GroundingLink is a citation returned alongside a live-search response.
type GroundingLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Coordinates is a last-known device position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Tab is one independent query/response session.
type Tab struct {
	// ID is generated at creation and never changes.
	ID string

	// Title is the label shown in the tab strip.
	Title string

	// URL is the last submitted query or address. Empty means the tab shows the landing view.
	URL string

	// Content is the response text of the last successful request.
	Content string

	// IsLoading is true while a request for this tab is in flight.
	IsLoading bool

	// IsThinking is true only while a deep-reasoning request is in flight.
	IsThinking bool

	// Mode is the profile the next request from this tab will use.
	Mode Mode

	// GroundingLinks holds citations from the last live-search response.
	GroundingLinks []GroundingLink
}

// NewTab creates a tab with a fresh id in the fast profile.
func NewTab(initialURL string) *Tab {
	return &Tab{
		ID:    uuid.NewString(),
		Title: DefaultTabTitle,
		URL:   initialURL,
		Mode:  ModeFast,
	}
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (t *Tab) Clone() Tab {
	c := *t
	if t.GroundingLinks != nil {
		c.GroundingLinks = append([]GroundingLink(nil), t.GroundingLinks...)
	}
	return c
}

// IsFresh reports whether the tab has never been navigated.
func (t *Tab) IsFresh() bool {
	return t.URL == "" && !t.IsLoading
}
