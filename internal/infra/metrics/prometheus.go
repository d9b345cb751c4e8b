package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thumbnail_jobs_processed_total",
		Help: "Total number of thumbnail jobs reaching a terminal state, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thumbnail_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_frames_extracted_total",
		Help: "Total number of frames extracted across all jobs",
	})

	FramesSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_frames_selected_total",
		Help: "Total number of key frames selected for assembly",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thumbnail_active_workers",
		Help: "Number of workers currently running a pipeline",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thumbnail_retry_total",
		Help: "Total number of attempt retries",
	}, []string{"attempt"})

	DedupHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_dedup_hits_total",
		Help: "Submissions answered from the dedup cache",
	})
)
