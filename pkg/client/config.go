package client

// Config is the configuration for a Client.
type Config struct {
	// Server is the host:port of the server to connect to.
	Server string

	// Scheme is the WebSocket scheme used to connect to the server (ws or
	// wss). HTTP requests use the matching http or https scheme.
	Scheme string

	// MeasurementID is the manually configured Measurement ID ("mid") to pass to the server.
	MeasurementID string

	// Preset is the network preset ID to simulate. Empty means the server's
	// default.
	Preset string

	// CacheHit selects the cache-hit variant of cached scenarios.
	CacheHit bool

	// ScenarioIDs restricts the simulation to these scenarios. Empty means
	// every scenario.
	ScenarioIDs []string

	// ItemCount is the benchmark dataset size. Negative values keep the
	// server's current value.
	ItemCount int

	// SlowMode requests the staggered reveal delays with benchmark results.
	SlowMode bool

	// Runs is the number of benchmark runs.
	Runs int

	// Emitter is the interface used to emit the results of the test. It can be overridden
	// to provide a custom output.
	Emitter Emitter

	// NoVerify disables the TLS certificate verification.
	NoVerify bool
}
