// Package telemetry provides observability instrumentation for the SDK runtime.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry), metrics (Prometheus), and event publishing into a
// unified system for monitoring and debugging deployments.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for operational insights
//  4. Event Publishing - Async event system for audit and notifications
//
// # Usage
//
// Initialize telemetry at program startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "my-program"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context propagation:
//
//	logger := tel.Logger.NewComponentLogger("marshaller")
//	logger = logger.WithDeploymentID("deploy-123").WithURN("urn:pulumi:dev::app::aws:s3:Bucket::site")
//	logger.Info("Marshalling resource inputs")
//	logger.WithError(err).Error("Marshalling failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into deployment flow and performance:
//
//	ctx, span := tel.Tracer.StartRegistrationSpan(ctx, "aws:s3:Bucket", "site")
//	defer span.End()
//
//	span.SetAttributes(
//	    telemetry.AttrResourceURN.String(urn),
//	    telemetry.AttrDryRun.Bool(true),
//	)
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Prometheus metrics track runtime behavior and performance:
//
//	tel.Metrics.RecordDeploymentStarted("preview")
//	tel.Metrics.RecordRegistrationStarted("aws:s3:Bucket")
//	tel.Metrics.RecordPropertiesMarshalled("out", 12)
//	tel.Metrics.RecordSecretSent(true)
//	tel.Metrics.RecordOutputResolved("known")
//	tel.Metrics.RecordError("serialization")
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics)
//
// # Event Publishing
//
// The event system provides async publishing with buffering and filtering:
//
//	tel.Events.PublishResourceRegistered(deploymentID, urn, resourceType)
//	tel.Events.PublishSecretSentClear(deploymentID, "password")
//
//	tel.Events.Subscribe(func(event telemetry.Event) {
//	    fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
//	}, telemetry.FilterByLevel("warning"))
//
// Event filters: FilterByLevel, FilterByType, FilterByDeploymentID, FilterByURN
//
// # Context Helpers
//
// High-level helpers simplify common instrumentation patterns:
//
//	// Deployment context
//	ctx = telemetry.WithDeploymentContext(ctx, deploymentID, dryRun)
//	defer telemetry.EndDeploymentContext(ctx, deploymentID, status, err)
//
//	// Registration context
//	ctx = telemetry.WithRegistrationContext(ctx, resourceType, resourceName)
//	defer telemetry.EndRegistrationContext(ctx, deploymentID, urn, resourceType, err)
//
//	// Engine RPC
//	err := telemetry.RecordEngineOperation(ctx, "RegisterResource", func() error {
//	    return monitor.RegisterResource(ctx, req)
//	})
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	// Development (verbose logging, stdout traces, full sampling)
//	cfg := telemetry.DevelopmentConfig()
//
//	// Production (JSON logs, OTLP traces, 10% sampling)
//	cfg := telemetry.ProductionConfig()
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending data:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("Telemetry shutdown error: %v", err)
//	}
//
// # Security Considerations
//
//   - Never log secret property values; log property names only
//   - Use secure connections (TLS) for trace exporters in production
//   - Limit metrics endpoint access via network policies
package telemetry
