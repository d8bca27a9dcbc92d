package telemetry

import (
	"fmt"
	"time"
)

// Config is the root configuration for the runtime's telemetry pipeline.
type Config struct {
	// ServiceName names the runtime in exported telemetry.
	ServiceName string

	// ServiceVersion is the runtime build version.
	ServiceVersion string

	// Environment tags exported telemetry with the deployment environment.
	Environment string

	// Logging configures the structured log output.
	Logging LoggingConfig

	// Tracing configures span export for deployment operations.
	Tracing TracingConfig

	// Metrics configures the prometheus registry and scrape endpoint.
	Metrics MetricsConfig

	// Events configures the event publishing pipeline.
	Events EventsConfig

	// ResourceAttributes are extra attributes attached to every span.
	ResourceAttributes map[string]string
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum level to emit (trace, debug, info, warn, error,
	// fatal).
	Level string

	// Format selects console or json output.
	Format string

	// Output is where log lines go: stdout, stderr or a file path.
	Output string

	// EnableCaller adds file:line caller information to each line.
	EnableCaller bool

	// TimeFormat is the timestamp format (unix, unixms, unixmicro, rfc3339).
	TimeFormat string
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Enabled turns span recording on.
	Enabled bool

	// Exporter selects where spans go: otlp, stdout or none. With none,
	// spans are recorded but never exported.
	Exporter string

	// Endpoint is the OTLP collector endpoint.
	Endpoint string

	// SamplingRate is the fraction of traces to keep, 0.0 to 1.0.
	SamplingRate float64

	// MaxExportBatchSize caps how many spans leave in one export.
	MaxExportBatchSize int

	// ExportTimeout bounds a single export attempt.
	ExportTimeout time.Duration

	// Headers are extra headers sent to the OTLP collector.
	Headers map[string]string

	// Insecure disables TLS towards the collector.
	Insecure bool
}

// MetricsConfig configures the prometheus registry.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool

	// ListenAddress is the scrape endpoint address.
	ListenAddress string

	// Path is the scrape endpoint path, /metrics by default.
	Path string

	// Namespace prefixes every metric name.
	Namespace string

	// DefaultHistogramBuckets are the latency buckets in seconds used by
	// the duration histograms.
	DefaultHistogramBuckets []float64
}

// EventsConfig configures the event publishing pipeline.
type EventsConfig struct {
	// Enabled turns event publishing on.
	Enabled bool

	// BufferSize is the capacity of the async event buffer.
	BufferSize int

	// FlushInterval is how often buffered events are flushed.
	FlushInterval time.Duration

	// MaxBatchSize caps how many events flush in one batch.
	MaxBatchSize int

	// EnableAsync decouples publishers from subscribers through the buffer.
	// Off, events deliver inline, which suits short-lived runs.
	EnableAsync bool
}

// DefaultConfig returns the baseline telemetry configuration.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "pulumi",
		ServiceVersion: "dev",
		Environment:    "development",
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			Output:       "stdout",
			EnableCaller: true,
			TimeFormat:   "rfc3339",
		},
		Tracing: TracingConfig{
			Enabled:            true,
			Exporter:           "stdout",
			Endpoint:           "",
			SamplingRate:       1.0,
			MaxExportBatchSize: 512,
			ExportTimeout:      30 * time.Second,
			Headers:            make(map[string]string),
			Insecure:           true,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			ListenAddress: ":9090",
			Path:          "/metrics",
			Namespace:     "pulumi",
			DefaultHistogramBuckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
			},
		},
		Events: EventsConfig{
			Enabled:       true,
			BufferSize:    1000,
			FlushInterval: 5 * time.Second,
			MaxBatchSize:  100,
			EnableAsync:   true,
		},
		ResourceAttributes: make(map[string]string),
	}
}

// ProductionConfig returns a configuration tuned for long-lived deployments,
// with machine-readable logs and traces sampled towards an OTLP collector.
func ProductionConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "production"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.TimeFormat = "unix"
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.SamplingRate = 0.1
	cfg.Tracing.Insecure = false
	return cfg
}

// DevelopmentConfig returns a configuration tuned for local iteration, with
// debug logs on the console and every trace kept.
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "development"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"
	cfg.Logging.EnableCaller = true
	cfg.Tracing.Exporter = "stdout"
	cfg.Tracing.SamplingRate = 1.0
	return cfg
}

// Validate checks the configuration before the pipeline is assembled.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.ServiceVersion == "" {
		return fmt.Errorf("service version is required")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	validExporters := map[string]bool{
		"otlp": true, "stdout": true, "none": true,
	}
	if c.Tracing.Enabled && !validExporters[c.Tracing.Exporter] {
		return fmt.Errorf("invalid trace exporter: %s", c.Tracing.Exporter)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0 and 1, got: %f", c.Tracing.SamplingRate)
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddress == "" {
		return fmt.Errorf("metrics listen address is required when metrics are enabled")
	}

	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return fmt.Errorf("event buffer size must be positive, got: %d", c.Events.BufferSize)
	}

	return nil
}
