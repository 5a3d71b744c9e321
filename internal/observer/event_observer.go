package observer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TransformEvent represents a design-session event
type TransformEvent struct {
	EventType    EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	SessionID    string                 `json:"session_id"`
	RequestID    string                 `json:"request_id,omitempty"`
	Duration     time.Duration          `json:"duration"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of event
type EventType string

const (
	// TransformRequested when a user asks for a transform
	TransformRequested EventType = "transform_requested"
	// TransformStarted when the pipeline accepted the request
	TransformStarted EventType = "transform_started"
	// TransformCompleted when the result was placed on the canvas
	TransformCompleted EventType = "transform_completed"
	// TransformFailed when the pipeline aborted
	TransformFailed EventType = "transform_failed"
	// TransformRejected when another transform was already in flight
	TransformRejected EventType = "transform_rejected"
	// AssetFetched when a template or reference image is fetched
	AssetFetched EventType = "asset_fetched"
	// AssetFetchFailed when a template or reference fetch fails
	AssetFetchFailed EventType = "asset_fetch_failed"
)

var (
	ErrNoResponder     = errors.New("no responder subscribed")
	ErrResponderExists = errors.New("a responder is already subscribed")
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event TransformEvent)
	GetObserverName() string
}

// Responder answers request events. Exactly one may be subscribed.
type Responder interface {
	Respond(ctx context.Context, event TransformEvent) (interface{}, error)
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event TransformEvent)
	SubscribeResponder(r Responder) error
	Request(ctx context.Context, event TransformEvent) (interface{}, error)
}

// LoggingObserver logs events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event TransformEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"session_id": event.SessionID,
		"success":    event.Success,
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case TransformRequested:
		entry.Debug("Transform requested")
	case TransformStarted:
		entry.Info("Transform started")
	case TransformCompleted:
		entry.Info("Transform completed")
	case TransformFailed:
		entry.Error("Transform failed")
	case TransformRejected:
		entry.Warn("Transform rejected: already in flight")
	case AssetFetched:
		entry.Debug("Asset fetched successfully")
	case AssetFetchFailed:
		entry.Error("Asset fetch failed")
	default:
		entry.Info("Studio event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from events
type MetricsObserver struct {
	mu                 sync.RWMutex
	requested          int64
	started            int64
	completed          int64
	failed             int64
	rejected           int64
	assetFetches       int64
	assetFetchFailures int64
	totalDuration      time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event TransformEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case TransformRequested:
		o.requested++
	case TransformStarted:
		o.started++
	case TransformCompleted:
		o.completed++
		o.totalDuration += event.Duration
	case TransformFailed:
		o.failed++
	case TransformRejected:
		o.rejected++
	case AssetFetched:
		o.assetFetches++
	case AssetFetchFailed:
		o.assetFetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := time.Duration(0)
	if o.completed > 0 {
		avg = o.totalDuration / time.Duration(o.completed)
	}

	return map[string]interface{}{
		"transforms_requested":  o.requested,
		"transforms_started":    o.started,
		"transforms_completed":  o.completed,
		"transforms_failed":     o.failed,
		"transforms_rejected":   o.rejected,
		"asset_fetches":         o.assetFetches,
		"asset_fetch_failures":  o.assetFetchFailures,
		"avg_transform_time_ms": avg.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	responder Responder
	async     bool
}

// NewEventPublisher creates a publisher that notifies observers concurrently
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0), async: true}
}

// NewSyncEventPublisher creates a publisher that notifies observers in order on
// the caller's goroutine
func NewSyncEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// SubscribeResponder registers the single handler for request events
func (p *EventPublisher) SubscribeResponder(r Responder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.responder != nil {
		return ErrResponderExists
	}
	p.responder = r
	return nil
}

// Request publishes a request event to observers and returns the responder's
// answer
func (p *EventPublisher) Request(ctx context.Context, event TransformEvent) (interface{}, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.RLock()
	r := p.responder
	p.mu.RUnlock()
	if r == nil {
		return nil, ErrNoResponder
	}

	p.NotifyObservers(ctx, event)
	return r.Respond(ctx, event)
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event TransformEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		if p.async {
			go notify(ctx, observer, event)
		} else {
			notify(ctx, observer, event)
		}
	}
}

func notify(ctx context.Context, obs Observer, event TransformEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Log panic but don't crash the application
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
