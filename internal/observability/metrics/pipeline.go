package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	batchTotal       *prometheus.CounterVec
	emailTotal       *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
	batchInFlight    prometheus.Gauge
	classifyDuration *prometheus.HistogramVec
	queueLag         *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "batch_process_total",
			Help:      "Total processed batches by status.",
		},
		[]string{"service", "status"},
	)
	emailTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "email_total",
			Help:      "Total classified emails by outcome (kept, dropped, failed).",
		},
		[]string{"service", "outcome"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "batch_process_duration_seconds",
			Help:      "Batch processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "batch_process_in_flight",
			Help:      "Number of batches currently being classified.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "classify_duration_seconds",
			Help:      "Zero-shot classification call duration including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "afp",
			Subsystem: "pipeline",
			Name:      "queue_lag_seconds",
			Help:      "Delay between batch ingestion and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(batchTotal, emailTotal, batchDuration, batchInFlight, classifyDuration, queueLag)

	return &PipelineMetrics{
		registry:         registry,
		batchTotal:       batchTotal,
		emailTotal:       emailTotal,
		batchDuration:    batchDuration,
		batchInFlight:    batchInFlight,
		classifyDuration: classifyDuration,
		queueLag:         queueLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *PipelineMetrics) FinishBatch(service string, duration time.Duration, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) CountEmails(service string, kept, dropped, failed int) {
	m.emailTotal.WithLabelValues(service, "kept").Add(float64(kept))
	m.emailTotal.WithLabelValues(service, "dropped").Add(float64(dropped))
	m.emailTotal.WithLabelValues(service, "failed").Add(float64(failed))
}

func (m *PipelineMetrics) ObserveClassify(service string, duration time.Duration) {
	m.classifyDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
