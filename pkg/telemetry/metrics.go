package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the SDK runtime.
type Metrics struct {
	config MetricsConfig

	// Deployment metrics
	deploymentsStarted   *prometheus.CounterVec
	deploymentsCompleted *prometheus.CounterVec
	deploymentDuration   *prometheus.HistogramVec

	// Registration metrics
	registrationsStarted   *prometheus.CounterVec
	registrationsCompleted *prometheus.CounterVec
	registrationDuration   *prometheus.HistogramVec

	// Marshalling metrics
	propertiesMarshalled *prometheus.CounterVec
	marshalDuration      *prometheus.HistogramVec
	secretsSent          *prometheus.CounterVec
	unknownsEncountered  prometheus.Counter

	// Output resolution metrics
	outputsResolved *prometheus.CounterVec

	// Engine call metrics
	engineCalls        *prometheus.CounterVec
	engineCallDuration *prometheus.HistogramVec
	engineCallErrors   *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	// System metrics
	activeRegistrations prometheus.Gauge
	pendingOutputs      prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	// Create a new registry
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		// Deployment metrics
		deploymentsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deployments_started_total",
				Help:      "Total number of deployments started",
			},
			[]string{"mode"},
		),
		deploymentsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deployments_completed_total",
				Help:      "Total number of deployments completed",
			},
			[]string{"status"},
		),
		deploymentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "deployment_duration_seconds",
				Help:      "Duration of deployment execution in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		// Registration metrics
		registrationsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_started_total",
				Help:      "Total number of resource registrations started",
			},
			[]string{"resource_type"},
		),
		registrationsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_completed_total",
				Help:      "Total number of resource registrations completed",
			},
			[]string{"status"},
		),
		registrationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "registration_duration_seconds",
				Help:      "Duration of resource registration in seconds",
				Buckets:   buckets,
			},
			[]string{"resource_type", "status"},
		),

		// Marshalling metrics
		propertiesMarshalled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "properties_marshalled_total",
				Help:      "Total number of properties crossing the wire boundary",
			},
			[]string{"direction"},
		),
		marshalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "marshal_duration_seconds",
				Help:      "Duration of property bag conversion in seconds",
				Buckets:   buckets,
			},
			[]string{"direction"},
		),
		secretsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "secrets_sent_total",
				Help:      "Total number of secret values sent to the engine",
			},
			[]string{"mode"},
		),
		unknownsEncountered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unknowns_encountered_total",
				Help:      "Total number of unknown sentinels crossing the wire boundary",
			},
		),

		// Output resolution metrics
		outputsResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outputs_resolved_total",
				Help:      "Total number of output slots delivered a terminal state",
			},
			[]string{"result"},
		),

		// Engine call metrics
		engineCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_calls_total",
				Help:      "Total number of engine RPCs",
			},
			[]string{"method"},
		),
		engineCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_call_duration_seconds",
				Help:      "Duration of engine RPCs in seconds",
				Buckets:   buckets,
			},
			[]string{"method"},
		),
		engineCallErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_call_errors_total",
				Help:      "Total number of failed engine RPCs",
			},
			[]string{"method"},
		),

		// Error metrics
		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),

		// System metrics
		activeRegistrations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_registrations",
				Help:      "Current number of in-flight resource registrations",
			},
		),
		pendingOutputs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_outputs",
				Help:      "Current number of output slots awaiting a terminal state",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.deploymentsStarted,
		m.deploymentsCompleted,
		m.deploymentDuration,
		m.registrationsStarted,
		m.registrationsCompleted,
		m.registrationDuration,
		m.propertiesMarshalled,
		m.marshalDuration,
		m.secretsSent,
		m.unknownsEncountered,
		m.outputsResolved,
		m.engineCalls,
		m.engineCallDuration,
		m.engineCallErrors,
		m.errorsByClass,
		m.activeRegistrations,
		m.pendingOutputs,
	)

	return m, nil
}

// Deployment Metrics

// RecordDeploymentStarted increments the counter for started deployments.
// mode is "preview" or "apply".
func (m *Metrics) RecordDeploymentStarted(mode string) {
	if m.deploymentsStarted == nil {
		return
	}
	m.deploymentsStarted.WithLabelValues(mode).Inc()
}

// RecordDeploymentCompleted records a completed deployment with its status
// and duration.
func (m *Metrics) RecordDeploymentCompleted(status string, duration time.Duration) {
	if m.deploymentsCompleted == nil {
		return
	}
	m.deploymentsCompleted.WithLabelValues(status).Inc()
	m.deploymentDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Registration Metrics

// RecordRegistrationStarted records the start of a resource registration.
func (m *Metrics) RecordRegistrationStarted(resourceType string) {
	if m.registrationsStarted == nil {
		return
	}
	m.registrationsStarted.WithLabelValues(resourceType).Inc()
	m.activeRegistrations.Inc()
}

// RecordRegistrationCompleted records the completion of a resource
// registration.
func (m *Metrics) RecordRegistrationCompleted(resourceType, status string, duration time.Duration) {
	if m.registrationsCompleted == nil {
		return
	}
	m.registrationsCompleted.WithLabelValues(status).Inc()
	m.registrationDuration.WithLabelValues(resourceType, status).Observe(duration.Seconds())
	m.activeRegistrations.Dec()
}

// Marshalling Metrics

// RecordPropertiesMarshalled adds to the property counter for a direction
// ("marshal" for native-to-wire, "unmarshal" for wire-to-native).
func (m *Metrics) RecordPropertiesMarshalled(direction string, count int) {
	if m.propertiesMarshalled == nil {
		return
	}
	m.propertiesMarshalled.WithLabelValues(direction).Add(float64(count))
}

// ObserveMarshalDuration records the duration of a property bag conversion.
func (m *Metrics) ObserveMarshalDuration(direction string, duration time.Duration) {
	if m.marshalDuration == nil {
		return
	}
	m.marshalDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// RecordSecretSent records a secret value leaving the runtime. tagged is
// false when the receiving side lacks secret support and the value left in
// the clear.
func (m *Metrics) RecordSecretSent(tagged bool) {
	if m.secretsSent == nil {
		return
	}
	mode := "clear"
	if tagged {
		mode = "tagged"
	}
	m.secretsSent.WithLabelValues(mode).Inc()
}

// RecordUnknownEncountered records an unknown sentinel crossing the wire
// boundary.
func (m *Metrics) RecordUnknownEncountered() {
	if m.unknownsEncountered == nil {
		return
	}
	m.unknownsEncountered.Inc()
}

// Output Resolution Metrics

// RecordOutputResolved records a terminal state delivered to an output slot.
// result is "known", "unknown" or "rejected".
func (m *Metrics) RecordOutputResolved(result string) {
	if m.outputsResolved == nil {
		return
	}
	m.outputsResolved.WithLabelValues(result).Inc()
}

// SetPendingOutputs sets the current number of unresolved output slots.
func (m *Metrics) SetPendingOutputs(count float64) {
	if m.pendingOutputs == nil {
		return
	}
	m.pendingOutputs.Set(count)
}

// Engine Call Metrics

// RecordEngineCall records an engine RPC with its duration.
func (m *Metrics) RecordEngineCall(method string, duration time.Duration) {
	if m.engineCalls == nil {
		return
	}
	m.engineCalls.WithLabelValues(method).Inc()
	m.engineCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordEngineCallError records a failed engine RPC.
func (m *Metrics) RecordEngineCallError(method string) {
	if m.engineCallErrors == nil {
		return
	}
	m.engineCallErrors.WithLabelValues(method).Inc()
}

// Error Metrics

// RecordError records an error by class.
func (m *Metrics) RecordError(errorClass string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
