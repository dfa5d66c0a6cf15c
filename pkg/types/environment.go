package types

// Environment is a snapshot of the process-wide connectivity signals.
type Environment struct {
	// Online gates new navigations.
	Online bool

	// Coords is nil until a location lookup succeeds.
	Coords *Coordinates

	// Latency is a simulated round-trip figure in milliseconds, for display only.
	Latency float64
}
