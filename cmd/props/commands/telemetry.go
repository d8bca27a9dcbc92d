package commands

import (
	"github.com/husains/pulumi/pkg/resource"
	"github.com/husains/pulumi/pkg/telemetry"
)

// buildTelemetry assembles the telemetry pipeline from the CLI config.
// With the telemetry section absent every component is a no-op, so command
// code instruments unconditionally.
func buildTelemetry(cfg *Config) (*telemetry.Telemetry, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = "props"
	tcfg.ServiceVersion = buildVersion

	// Stdout carries the command's JSON output; logs go to stderr.
	tcfg.Logging.Output = "stderr"
	tcfg.Logging.Format = "console"
	tcfg.Logging.EnableCaller = false
	switch {
	case verbose:
		tcfg.Logging.Level = "debug"
	case cfg.Logging.Level != "":
		tcfg.Logging.Level = cfg.Logging.Level
	default:
		tcfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "json" {
		tcfg.Logging.Format = "json"
	}

	tcfg.Tracing.Enabled = cfg.Telemetry.Enabled
	tcfg.Tracing.Exporter = "none"
	if cfg.Telemetry.Enabled && cfg.Telemetry.Tracing.Exporter != "" {
		tcfg.Tracing.Exporter = cfg.Telemetry.Tracing.Exporter
		tcfg.Tracing.Endpoint = cfg.Telemetry.Tracing.Endpoint
		tcfg.Tracing.Insecure = cfg.Telemetry.Tracing.Insecure
	}

	tcfg.Metrics.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.Metrics.Enabled
	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		tcfg.Metrics.ListenAddress = addr
	}

	// A single-shot command delivers events inline.
	tcfg.Events.Enabled = cfg.Telemetry.Enabled
	tcfg.Events.EnableAsync = false

	return telemetry.NewTelemetry(tcfg)
}

// collectMarkers walks an unmarshalled value and gathers the dotted paths of
// secret-wrapped properties and the count of unknown markers.
func collectMarkers(path string, v any, secrets *[]string, unknowns *int) {
	switch val := v.(type) {
	case resource.Secret:
		*secrets = append(*secrets, path)
		collectMarkers(path, val.Element, secrets, unknowns)
	case resource.Unknown:
		*unknowns++
	case map[string]any:
		for key, elem := range val {
			child := key
			if path != "" {
				child = path + "." + key
			}
			collectMarkers(child, elem, secrets, unknowns)
		}
	case []any:
		for _, elem := range val {
			collectMarkers(path, elem, secrets, unknowns)
		}
	}
}

// propertyCount reports how many top-level properties a decoded value holds.
func propertyCount(v any) int {
	if bag, ok := v.(map[string]any); ok {
		return len(bag)
	}
	return 1
}

// errorClass maps a failed conversion to its metric label.
func errorClass(err error) string {
	switch {
	case resource.IsValidation(err):
		return string(resource.ErrorClassValidation)
	case resource.IsSerialization(err):
		return string(resource.ErrorClassSerialization)
	case resource.IsProtocol(err):
		return string(resource.ErrorClassProtocol)
	default:
		return "internal"
	}
}
