package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Sampling pipeline
	MetricTileFetchLatency = "tiles.fetch_latency"
	MetricSamplingDuration = "terrain.sampling_duration"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricRoutesCommitted  = "business.routes_committed"
	MetricProfilesComputed = "business.profiles_computed"
)
