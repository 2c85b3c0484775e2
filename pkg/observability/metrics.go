package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}

// Conversation-level collectors, registered on the default registry so they
// show up on the same /metrics endpoint as the exporter above.
var (
	MessagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "origination_messages_handled_total",
		Help: "Messages dispatched to a stage handler, by stage and outcome.",
	}, []string{"stage", "outcome"})

	StageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "origination_stage_transitions_total",
		Help: "Committed conversation state transitions.",
	}, []string{"from", "to"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "origination_active_sessions",
		Help: "Sessions currently held in the store.",
	})

	AssessmentsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "origination_assessments_completed_total",
		Help: "Background credit assessments by result (approved, rejected, failed, stale).",
	}, []string{"result"})

	AssessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "origination_assessment_duration_seconds",
		Help:    "Wall time of the background credit assessment pipeline.",
		Buckets: prometheus.DefBuckets,
	})
)
