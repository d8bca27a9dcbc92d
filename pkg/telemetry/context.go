package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides a unified telemetry interface combining logging, tracing, metrics, and events.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize logger
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	// Initialize tracer
	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	// Initialize metrics
	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	// Initialize event publisher
	events, err := NewEventPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Events:  events,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown gracefully shuts down all telemetry components.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	// Shutdown in reverse order of initialization
	if err := t.Events.Shutdown(ctx); err != nil {
		return err
	}

	if err := t.Tracer.Shutdown(ctx); err != nil {
		return err
	}

	// Metrics server is not explicitly shut down here as it may need to continue
	// serving metrics until the very end of the application lifecycle

	return nil
}

// Flush forces all pending telemetry data to be exported.
func (t *Telemetry) Flush(ctx context.Context) error {
	return t.Tracer.ForceFlush(ctx)
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}

// Context Helpers for common instrumentation patterns

// InstrumentedContext creates a context with telemetry, logger fields, and a trace span.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// StartOperation begins an instrumented operation with logging, tracing, and timing.
func StartOperation(ctx context.Context, operation string, attrs ...attribute.KeyValue) *InstrumentedContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &InstrumentedContext{
			Ctx:    ctx,
			Logger: FromContext(ctx),
			Timer:  NewTimer(),
		}
	}

	// Start trace span
	spanCtx, span := tel.Tracer.StartSpan(ctx, operation, attrs...)

	// Create logger with operation field
	logger := tel.Logger.WithField("operation", operation)

	// Add trace context to logger if available
	if span.SpanContext().IsValid() {
		logger = logger.WithFields(map[string]interface{}{
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
		})
	}

	return &InstrumentedContext{
		Ctx:    spanCtx,
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
	}
}

// End finishes the instrumented operation, recording success or failure.
func (ic *InstrumentedContext) End(err error) {
	if ic.Span != nil {
		if err != nil {
			RecordError(ic.Span, err)
		} else {
			RecordSuccess(ic.Span)
		}
		ic.Span.End()
	}
}

// WithDeploymentContext creates a context enriched with deployment-specific telemetry.
func WithDeploymentContext(ctx context.Context, deploymentID string, dryRun bool) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return ctx
	}

	mode := "apply"
	if dryRun {
		mode = "preview"
	}

	// Start deployment span
	spanCtx, span := tel.Tracer.StartDeploymentSpan(ctx, deploymentID, dryRun)

	// Create deployment-specific logger
	logger := tel.Logger.WithDeploymentID(deploymentID).WithField("mode", mode)
	spanCtx = logger.WithContext(spanCtx)

	// Record deployment started metric
	tel.Metrics.RecordDeploymentStarted(mode)

	// Publish deployment started event
	_ = tel.Events.PublishDeploymentStarted(deploymentID, mode)

	// Store the span and timer in context for later retrieval
	spanCtx = context.WithValue(spanCtx, deploymentSpanKey{}, span)
	spanCtx = context.WithValue(spanCtx, deploymentTimerKey{}, NewTimer())

	return spanCtx
}

// deploymentSpanKey is the context key for deployment spans.
type deploymentSpanKey struct{}

// deploymentTimerKey is the context key for deployment timers.
type deploymentTimerKey struct{}

// EndDeploymentContext completes the deployment context, recording metrics and events.
func EndDeploymentContext(ctx context.Context, deploymentID, status string, err error) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	// Get the deployment span from context
	if span, ok := ctx.Value(deploymentSpanKey{}).(trace.Span); ok {
		if err != nil {
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
		span.End()
	}

	// Get the timer from context
	var duration time.Duration
	if timer, ok := ctx.Value(deploymentTimerKey{}).(*Timer); ok {
		duration = timer.Duration()
	}

	// Record metrics
	tel.Metrics.RecordDeploymentCompleted(status, duration)

	// Publish events
	if err != nil {
		_ = tel.Events.PublishDeploymentFailed(deploymentID, err.Error())
	} else {
		_ = tel.Events.PublishDeploymentCompleted(deploymentID, status, duration)
	}
}

// WithRegistrationContext creates a context enriched with registration-specific telemetry.
func WithRegistrationContext(ctx context.Context, resourceType, resourceName string) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return ctx
	}

	// Start registration span
	spanCtx, span := tel.Tracer.StartRegistrationSpan(ctx, resourceType, resourceName)

	// Create registration-specific logger
	logger := tel.Logger.WithResource(resourceType, resourceName)
	spanCtx = logger.WithContext(spanCtx)

	// Record registration started metric
	tel.Metrics.RecordRegistrationStarted(resourceType)

	// Store the span and timer in context
	spanCtx = context.WithValue(spanCtx, registrationSpanKey{}, span)
	spanCtx = context.WithValue(spanCtx, registrationTimerKey{}, NewTimer())

	return spanCtx
}

// registrationSpanKey is the context key for registration spans.
type registrationSpanKey struct{}

// registrationTimerKey is the context key for registration timers.
type registrationTimerKey struct{}

// EndRegistrationContext completes the registration context, recording metrics and events.
func EndRegistrationContext(ctx context.Context, deploymentID, urn, resourceType string, err error) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	// Get the span from context
	if span, ok := ctx.Value(registrationSpanKey{}).(trace.Span); ok {
		if err != nil {
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
		span.End()
	}

	// Get the timer from context
	var duration time.Duration
	if timer, ok := ctx.Value(registrationTimerKey{}).(*Timer); ok {
		duration = timer.Duration()
	}

	// Record metrics and publish events
	if err != nil {
		tel.Metrics.RecordRegistrationCompleted(resourceType, "failed", duration)
		_ = tel.Events.PublishRegistrationFailed(deploymentID, urn, err.Error())
	} else {
		tel.Metrics.RecordRegistrationCompleted(resourceType, "succeeded", duration)
		_ = tel.Events.PublishResourceRegistered(deploymentID, urn, resourceType)
	}
}

// RecordEngineOperation records an engine RPC with metrics and tracing.
func RecordEngineOperation(ctx context.Context, method string, fn func() error) error {
	tel := FromTelemetryContext(ctx)

	// Start span
	var span trace.Span
	if tel != nil {
		ctx, span = tel.Tracer.StartEngineSpan(ctx, method)
		defer span.End()
	}

	// Start timer
	timer := NewTimer()

	// Execute operation
	err := fn()

	// Record metrics
	if tel != nil {
		duration := timer.Duration()
		tel.Metrics.RecordEngineCall(method, duration)
		if err != nil {
			tel.Metrics.RecordEngineCallError(method)
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
	}

	return err
}
