package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Channel metrics
	channelState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "meeting_assistant_channel_state",
		Help: "Suggestion channel state (0=disabled, 1=connecting, 2=connected, 3=disconnected)",
	}, []string{"meeting_id"})

	connectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_assistant_connect_attempts_total",
		Help: "Suggestion channel connection attempts",
	}, []string{"result"}) // result: "success", "error", "stale"

	reconnectsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_assistant_reconnects_scheduled_total",
		Help: "Reconnection attempts scheduled after a disconnect",
	})

	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_assistant_messages_total",
		Help: "Inbound channel messages by classification",
	}, []string{"kind"}) // kind: "suggestion", "transcript", "malformed"

	alertsPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_assistant_alerts_total",
		Help: "Audible alerts triggered by new suggestions",
	})

	// Backend REST metrics
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_assistant_api_requests_total",
		Help: "Backend REST requests",
	}, []string{"op", "status"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meeting_assistant_api_latency_seconds",
		Help:    "Backend REST request latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	}, []string{"op"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "meeting_assistant_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})
)

// ChannelMetrics records metrics for one meeting's suggestion channel
type ChannelMetrics struct {
	meetingID string
}

// NewChannelMetrics creates a metrics recorder for a meeting
func NewChannelMetrics(meetingID string) *ChannelMetrics {
	return &ChannelMetrics{meetingID: meetingID}
}

// SetState records the current channel state
func (m *ChannelMetrics) SetState(state int) {
	channelState.WithLabelValues(m.meetingID).Set(float64(state))
}

// RecordConnectAttempt records the outcome of one dial
func (m *ChannelMetrics) RecordConnectAttempt(result string) {
	connectAttempts.WithLabelValues(result).Inc()
}

// RecordReconnectScheduled records a scheduled reconnection
func (m *ChannelMetrics) RecordReconnectScheduled() {
	reconnectsScheduled.Inc()
}

// RecordMessage records an inbound message by classification
func (m *ChannelMetrics) RecordMessage(kind string) {
	messagesReceived.WithLabelValues(kind).Inc()
}

// RecordAlert records an audible alert
func (m *ChannelMetrics) RecordAlert() {
	alertsPlayed.Inc()
}

// RecordAPIRequest records one backend REST request
func RecordAPIRequest(op, status string, seconds float64) {
	apiRequests.WithLabelValues(op, status).Inc()
	apiLatency.WithLabelValues(op).Observe(seconds)
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}
