// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_analysis"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Upload metrics
	UploadsTotal *prometheus.CounterVec
	UploadBytes  prometheus.Counter

	// Transcription metrics
	TranscriptionsTotal   *prometheus.CounterVec
	TranscriptionDuration *prometheus.HistogramVec

	// Completion metrics
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec

	// Analysis metrics
	AnalysesTotal   prometheus.Counter
	AnalysesByLabel *prometheus.CounterVec
	ParseFailures   prometheus.Counter

	// Q&A metrics
	QuestionsTotal *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of audio files uploaded",
		}, []string{"media_type"}),
		UploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Total audio bytes uploaded",
		}),

		TranscriptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of transcription requests",
		}, []string{"provider", "status"}),
		TranscriptionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Duration of transcription requests in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),

		CompletionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Total number of LLM completion requests",
		}, []string{"model", "status"}),
		CompletionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Duration of LLM completion requests in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),

		AnalysesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of completed call analyses",
		}),
		AnalysesByLabel: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_by_label_total",
			Help:      "Completed analyses by classification label",
		}, []string{"label"}),
		ParseFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_parse_failures_total",
			Help:      "Total number of analysis replies that failed strict parsing",
		}),

		QuestionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Total number of follow-up questions submitted",
		}, []string{"status"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordUpload records an accepted audio upload.
func (m *Metrics) RecordUpload(mediaType string, bytes int) {
	m.UploadsTotal.WithLabelValues(mediaType).Inc()
	m.UploadBytes.Add(float64(bytes))
}

// RecordTranscription records a transcription attempt.
func (m *Metrics) RecordTranscription(provider string, err error, durationSeconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.TranscriptionsTotal.WithLabelValues(provider, status).Inc()
	m.TranscriptionDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordCompletion records an LLM completion attempt.
func (m *Metrics) RecordCompletion(model string, err error, durationSeconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CompletionsTotal.WithLabelValues(model, status).Inc()
	m.CompletionDuration.WithLabelValues(model).Observe(durationSeconds)
}

// RecordAnalysis records a successfully parsed analysis.
func (m *Metrics) RecordAnalysis(label string) {
	m.AnalysesTotal.Inc()
	m.AnalysesByLabel.WithLabelValues(label).Inc()
}

// RecordParseFailure records an analysis reply that failed strict parsing.
func (m *Metrics) RecordParseFailure() {
	m.ParseFailures.Inc()
}

// RecordQuestion records a follow-up question submission.
func (m *Metrics) RecordQuestion(status string) {
	m.QuestionsTotal.WithLabelValues(status).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
