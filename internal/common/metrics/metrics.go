package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of jobs currently being handled per worker",
		},
		[]string{"task_type"},
	)

	ApplicationsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connect_applications_scored_total",
			Help: "Provider applications scored, by resulting tier",
		},
		[]string{"tier"},
	)

	ApplicationsAutoApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connect_applications_auto_approved_total",
			Help: "Provider applications that passed auto-approval",
		},
	)

	ApplicationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "connect_application_score",
			Help:    "Distribution of provider application scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	StepValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connect_wizard_step_validation_failures_total",
			Help: "Wizard step validations that returned errors",
		},
		[]string{"wizard", "step"},
	)

	WizardSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connect_wizard_submissions_total",
			Help: "Wizard submissions by outcome",
		},
		[]string{"wizard", "outcome"},
	)
)
