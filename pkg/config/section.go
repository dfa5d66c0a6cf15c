package config

// Section is one independently persisted block of settings.
//
// Data and SetData exchange plain maps so a Store can persist any section
// without knowing its Go type. SetData must tolerate missing keys and the
// number types produced by both the JSON and YAML decoders.
type Section interface {
	// ID returns the key the section is stored under.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Description explains what the section controls.
	Description() string

	// Data returns the current settings.
	Data() map[string]interface{}

	// SetData applies stored settings.
	SetData(data map[string]interface{}) error

	// Validate checks the current settings.
	Validate() error

	// Reset restores defaults.
	Reset()
}
