package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "energywatch_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestReadings *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	agentTicks        *prometheus.CounterVec
	agentOwnerRuns    *prometheus.CounterVec
	agentOwnerLatency *prometheus.HistogramVec
	agentSkippedTicks prometheus.Counter

	recommendationsEmitted *prometheus.CounterVec

	summaryExports *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges. Safe to call
// more than once; registration happens on the first call.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestReadings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_readings_total",
				Help: "Total readings ingested by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Reading ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by status class",
			},
			[]string{"status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		)

		agentTicks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "agent_ticks_total",
				Help: "Total recommendation agent ticks by result",
			},
			[]string{"result"},
		)
		agentOwnerRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "agent_owner_runs_total",
				Help: "Total per-owner agent evaluations by result",
			},
			[]string{"result"},
		)
		agentOwnerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "agent_owner_latency_seconds",
				Help:    "Per-owner agent evaluation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		agentSkippedTicks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "agent_ticks_skipped_total",
				Help: "Ticks skipped because the previous one was still running",
			},
		)

		recommendationsEmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "recommendations_emitted_total",
				Help: "Total recommendations emitted by level",
			},
			[]string{"level"},
		)

		summaryExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_exports_total",
				Help: "Total dashboard summary exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			ingestReadings,
			ingestLatency,
			httpRequests,
			httpLatency,
			agentTicks,
			agentOwnerRuns,
			agentOwnerLatency,
			agentSkippedTicks,
			recommendationsEmitted,
			summaryExports,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records reading ingest duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestReadings != nil {
		ingestReadings.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveHTTP records request duration by status class ("2xx", "4xx"...).
func ObserveHTTP(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(status).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(status).Observe(duration.Seconds())
	}
}

// IncAgentTick counts a completed scheduler tick.
func IncAgentTick(err error) {
	if agentTicks == nil {
		return
	}
	if err != nil {
		agentTicks.WithLabelValues(resultError).Inc()
		return
	}
	agentTicks.WithLabelValues(resultSuccess).Inc()
}

// IncAgentTickSkipped counts a tick dropped by single-flight mode.
func IncAgentTickSkipped() {
	if agentSkippedTicks != nil {
		agentSkippedTicks.Inc()
	}
}

// ObserveOwnerRun records one per-owner agent evaluation.
func ObserveOwnerRun(err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if agentOwnerRuns != nil {
		agentOwnerRuns.WithLabelValues(result).Inc()
	}
	if agentOwnerLatency != nil {
		agentOwnerLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncRecommendationEmitted counts an emitted recommendation by level.
func IncRecommendationEmitted(level string) {
	if level == "" {
		level = "unknown"
	}
	if recommendationsEmitted != nil {
		recommendationsEmitted.WithLabelValues(level).Inc()
	}
}

// IncSummaryExport counts a dashboard export by format.
func IncSummaryExport(format string, err error) {
	if format == "" {
		format = "unknown"
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if summaryExports != nil {
		summaryExports.WithLabelValues(format, result).Inc()
	}
}

// registerDBMetrics exposes connection pool stats as gauges.
func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	collector := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_open_connections",
			Help: "Open connections in the database pool",
		},
		func() float64 { return float64(db.Stats().OpenConnections) },
	)
	inUse := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_in_use_connections",
			Help: "Connections currently in use",
		},
		func() float64 { return float64(db.Stats().InUse) },
	)
	if err := prometheus.Register(collector); err != nil && logger != nil {
		logger.Printf("metrics: db gauge register: %v", err)
	}
	if err := prometheus.Register(inUse); err != nil && logger != nil {
		logger.Printf("metrics: db gauge register: %v", err)
	}
}
