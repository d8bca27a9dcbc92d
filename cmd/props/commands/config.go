package commands

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds the optional CLI configuration loaded from --config.
type Config struct {
	// Logging adjusts the CLI's log output.
	Logging struct {
		// Level is the minimum level to emit.
		Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
		// Format selects console or json output.
		Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	} `yaml:"logging"`

	// Session mirrors the runtime session flags for unmarshal runs.
	Session struct {
		// DryRun treats the input as coming from a preview.
		DryRun bool `yaml:"dry_run"`
		// LegacyApply enables pre-delete-before-replace compatibility.
		LegacyApply bool `yaml:"legacy_apply"`
	} `yaml:"session"`

	// Telemetry enables the tracing, metrics and event pipeline for a run.
	// Left out, every instrument comes up as a no-op.
	Telemetry struct {
		// Enabled turns the pipeline on.
		Enabled bool `yaml:"enabled"`

		// Tracing selects where marshal spans are exported.
		Tracing struct {
			// Exporter is the span exporter to use.
			Exporter string `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`
			// Endpoint is the OTLP collector endpoint.
			Endpoint string `yaml:"endpoint"`
			// Insecure disables TLS towards the collector.
			Insecure bool `yaml:"insecure"`
		} `yaml:"tracing"`

		// Metrics configures the prometheus registry.
		Metrics struct {
			// Enabled turns metric collection on.
			Enabled bool `yaml:"enabled"`
			// ListenAddress is where the scrape endpoint would listen.
			ListenAddress string `yaml:"listen_address"`
		} `yaml:"metrics"`
	} `yaml:"telemetry"`
}

// loadConfig reads, parses and validates the config file. A missing --config
// flag yields the zero config.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	applyLogging(cfg)
	return cfg, nil
}

// applyLogging reconfigures the global logger from the loaded config and the
// --verbose flag.
func applyLogging(cfg *Config) {
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch {
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case cfg.Logging.Level != "":
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
}
