package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Job Metrics
	JobsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_jobs_started_total",
			Help: "Total number of ingest jobs started",
		},
		[]string{"content_kind"},
	)

	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_jobs_completed_total",
			Help: "Total number of ingest jobs reaching a terminal state",
		},
		[]string{"content_kind", "status"},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_jobs_in_progress",
			Help: "Number of ingest jobs currently being processed",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_job_duration_seconds",
			Help:    "End-to-end ingest duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		},
		[]string{"content_kind", "status"},
	)

	// Pipeline Phase Metrics
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_phase_duration_seconds",
			Help:    "Duration of individual pipeline phases in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"phase"},
	)

	RungsTranscodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rungs_transcoded_total",
			Help: "Total number of quality rungs encoded",
		},
		[]string{"rung", "status"},
	)

	TranscodeSpeed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_transcode_speed_ratio",
			Help:    "Transcode speed ratio (source duration / processing time)",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0, 16.0},
		},
		[]string{"rung"},
	)

	// Upload Metrics
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_uploads_total",
			Help: "Total number of object storage uploads",
		},
		[]string{"class", "status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_upload_bytes_total",
			Help: "Total bytes pushed to object storage",
		},
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_upload_duration_seconds",
			Help:    "Per-file upload duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"class"},
	)

	// Queue Metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_queue_depth",
			Help: "Number of ingest requests waiting in the queue",
		},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Business Metrics
	VideoDurationProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_video_duration_processed_seconds_total",
			Help: "Total duration of source video processed in seconds",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordJobStarted records the start of an ingest job
func RecordJobStarted(contentKind string) {
	JobsStartedTotal.WithLabelValues(contentKind).Inc()
	JobsInProgress.Inc()
}

// RecordJobFinished records a terminal job state
func RecordJobFinished(contentKind, status string, duration float64) {
	JobsCompletedTotal.WithLabelValues(contentKind, status).Inc()
	JobDuration.WithLabelValues(contentKind, status).Observe(duration)
	JobsInProgress.Dec()
}

// RecordPhase records the duration of one pipeline phase
func RecordPhase(phase string, duration float64) {
	PhaseDuration.WithLabelValues(phase).Observe(duration)
}

// RecordRung records a rung encode outcome
func RecordRung(rung, status string) {
	RungsTranscodedTotal.WithLabelValues(rung, status).Inc()
}

// RecordUpload records one object storage upload outcome
func RecordUpload(class, status string, duration float64, size int64) {
	UploadsTotal.WithLabelValues(class, status).Inc()
	UploadDuration.WithLabelValues(class).Observe(duration)
	if status == "success" {
		UploadBytesTotal.Add(float64(size))
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
