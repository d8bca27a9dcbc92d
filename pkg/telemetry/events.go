package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a telemetry event in the SDK runtime.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// DeploymentID is the associated deployment ID, if applicable.
	DeploymentID string `json:"deployment_id,omitempty"`

	// URN is the associated resource URN, if applicable.
	URN string `json:"urn,omitempty"`

	// Property is the associated property name, if applicable.
	Property string `json:"property,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventType constants for common event types.
const (
	EventTypeDeploymentStarted   = "deployment.started"
	EventTypeDeploymentCompleted = "deployment.completed"
	EventTypeDeploymentFailed    = "deployment.failed"
	EventTypeResourceRegistered  = "resource.registered"
	EventTypeRegistrationFailed  = "resource.registration_failed"
	EventTypeOutputsResolved     = "outputs.resolved"
	EventTypeOutputsRejected     = "outputs.rejected"
	EventTypeSecretSentClear     = "secret.sent_clear"
	EventTypeFeatureProbed       = "engine.feature_probed"
	EventTypeError               = "error"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher manages event publishing and subscriptions.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	wg          sync.WaitGroup
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config:      cfg,
		buffer:      make(chan Event, cfg.BufferSize),
		subscribers: make([]subscriberEntry, 0),
		filters:     make([]EventFilter, 0),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Start the event processing goroutine
	if cfg.EnableAsync {
		ep.wg.Add(1)
		go ep.processEvents()
	}

	// Start the periodic flush goroutine
	if cfg.FlushInterval > 0 {
		ep.wg.Add(1)
		go ep.periodicFlush()
	}

	return ep, nil
}

// Publish publishes an event to all subscribers.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	// Set ID and timestamp if not already set
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Apply global filters
	ep.mu.RLock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.RUnlock()
			return nil // Event filtered out
		}
	}
	ep.mu.RUnlock()

	// Send to buffer if async, otherwise process immediately
	if ep.config.EnableAsync {
		select {
		case ep.buffer <- event:
			return nil
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
			// Buffer full, drop event or log warning
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	// Synchronous publishing
	ep.deliverEvent(event)
	return nil
}

// PublishDeploymentStarted publishes a deployment started event.
func (ep *EventPublisher) PublishDeploymentStarted(deploymentID, mode string) error {
	return ep.Publish(Event{
		Type:         EventTypeDeploymentStarted,
		Source:       "runtime",
		DeploymentID: deploymentID,
		Message:      fmt.Sprintf("Deployment %s started (%s)", deploymentID, mode),
		Level:        EventLevelInfo,
		Data: map[string]interface{}{
			"mode": mode,
		},
	})
}

// PublishDeploymentCompleted publishes a deployment completed event.
func (ep *EventPublisher) PublishDeploymentCompleted(deploymentID, status string, duration time.Duration) error {
	return ep.Publish(Event{
		Type:         EventTypeDeploymentCompleted,
		Source:       "runtime",
		DeploymentID: deploymentID,
		Message:      fmt.Sprintf("Deployment %s completed with status: %s", deploymentID, status),
		Level:        EventLevelInfo,
		Data: map[string]interface{}{
			"status":   status,
			"duration": duration.Seconds(),
		},
	})
}

// PublishDeploymentFailed publishes a deployment failed event.
func (ep *EventPublisher) PublishDeploymentFailed(deploymentID, reason string) error {
	return ep.Publish(Event{
		Type:         EventTypeDeploymentFailed,
		Source:       "runtime",
		DeploymentID: deploymentID,
		Message:      fmt.Sprintf("Deployment %s failed: %s", deploymentID, reason),
		Level:        EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishResourceRegistered publishes a resource registered event.
func (ep *EventPublisher) PublishResourceRegistered(deploymentID, urn, resourceType string) error {
	return ep.Publish(Event{
		Type:         EventTypeResourceRegistered,
		Source:       "runtime",
		DeploymentID: deploymentID,
		URN:          urn,
		Message:      fmt.Sprintf("Resource %s registered (%s)", urn, resourceType),
		Level:        EventLevelInfo,
		Data: map[string]interface{}{
			"resource_type": resourceType,
		},
	})
}

// PublishRegistrationFailed publishes a registration failed event.
func (ep *EventPublisher) PublishRegistrationFailed(deploymentID, urn, reason string) error {
	return ep.Publish(Event{
		Type:         EventTypeRegistrationFailed,
		Source:       "runtime",
		DeploymentID: deploymentID,
		URN:          urn,
		Message:      fmt.Sprintf("Registration of %s failed: %s", urn, reason),
		Level:        EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishOutputsResolved publishes an outputs resolved event.
func (ep *EventPublisher) PublishOutputsResolved(deploymentID, urn string, count int) error {
	return ep.Publish(Event{
		Type:         EventTypeOutputsResolved,
		Source:       "runtime",
		DeploymentID: deploymentID,
		URN:          urn,
		Message:      fmt.Sprintf("Resolved %d output properties of %s", count, urn),
		Level:        EventLevelInfo,
		Data: map[string]interface{}{
			"count": count,
		},
	})
}

// PublishOutputsRejected publishes an outputs rejected event.
func (ep *EventPublisher) PublishOutputsRejected(deploymentID, urn, reason string) error {
	return ep.Publish(Event{
		Type:         EventTypeOutputsRejected,
		Source:       "runtime",
		DeploymentID: deploymentID,
		URN:          urn,
		Message:      fmt.Sprintf("Outputs of %s rejected: %s", urn, reason),
		Level:        EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishSecretSentClear publishes a warning that a secret value went to the
// engine untagged because the engine lacks secret support.
func (ep *EventPublisher) PublishSecretSentClear(deploymentID, property string) error {
	return ep.Publish(Event{
		Type:         EventTypeSecretSentClear,
		Source:       "marshaller",
		DeploymentID: deploymentID,
		Property:     property,
		Message:      fmt.Sprintf("Secret property %s sent in the clear; engine lacks secret support", property),
		Level:        EventLevelWarning,
	})
}

// PublishFeatureProbed publishes an engine capability probe result.
func (ep *EventPublisher) PublishFeatureProbed(deploymentID, featureID string, supported bool) error {
	return ep.Publish(Event{
		Type:         EventTypeFeatureProbed,
		Source:       "session",
		DeploymentID: deploymentID,
		Message:      fmt.Sprintf("Engine feature %s supported: %t", featureID, supported),
		Level:        EventLevelInfo,
		Data: map[string]interface{}{
			"feature_id": featureID,
			"supported":  supported,
		},
	})
}

// Subscribe adds a new event subscriber.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// processEvents processes events from the buffer asynchronously.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	batch := make([]Event, 0, ep.config.MaxBatchSize)

	for {
		select {
		case event := <-ep.buffer:
			batch = append(batch, event)

			// Flush batch if it reaches max size
			if len(batch) >= ep.config.MaxBatchSize {
				ep.flushBatch(batch)
				batch = make([]Event, 0, ep.config.MaxBatchSize)
			}

		case <-ep.ctx.Done():
			// Flush remaining events before shutting down
			if len(batch) > 0 {
				ep.flushBatch(batch)
			}
			return
		}
	}
}

// periodicFlush flushes events periodically.
func (ep *EventPublisher) periodicFlush() {
	defer ep.wg.Done()

	ticker := time.NewTicker(ep.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Trigger flush by draining buffer
			// This is handled by the processEvents goroutine
		case <-ep.ctx.Done():
			return
		}
	}
}

// flushBatch delivers a batch of events to subscribers.
func (ep *EventPublisher) flushBatch(events []Event) {
	for _, event := range events {
		ep.deliverEvent(event)
	}
}

// deliverEvent delivers an event to all subscribers.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	for _, entry := range ep.subscribers {
		// Apply subscriber-specific filter
		if entry.filter != nil && !entry.filter(event) {
			continue
		}

		// Call subscriber in a goroutine to avoid blocking
		go entry.subscriber(event)
	}
}

// Shutdown gracefully shuts down the event publisher.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if !ep.config.Enabled {
		return nil
	}

	// Signal shutdown
	ep.cancel()

	// Wait for processing to complete with timeout
	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// Common event filters.

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// FilterByDeploymentID creates a filter that only allows events for a specific deployment.
func FilterByDeploymentID(deploymentID string) EventFilter {
	return func(event Event) bool {
		return event.DeploymentID == deploymentID
	}
}

// FilterByURN creates a filter that only allows events for a specific resource.
func FilterByURN(urn string) EventFilter {
	return func(event Event) bool {
		return event.URN == urn
	}
}
