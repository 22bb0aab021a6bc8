package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adventure_server_generation_jobs_received_total",
			Help: "Total number of generation jobs scheduled.",
		},
	)
	jobsSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adventure_server_generation_jobs_succeeded_total",
			Help: "Total number of generation jobs completed successfully.",
		},
	)
	jobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_server_generation_jobs_failed_total",
			Help: "Total number of generation jobs failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	jobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adventure_server_generation_job_duration_seconds",
			Help:    "Histogram of end-to-end generation job durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

func metricsIncrementJobsReceived() { jobsReceived.Inc() }

func metricsIncrementJobsSucceeded() { jobsSucceeded.Inc() }

func metricsIncrementJobsFailed(reason string) { jobsFailed.WithLabelValues(reason).Inc() }

func metricsRecordJobDuration(d time.Duration) { jobDuration.Observe(d.Seconds()) }
