package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChallengesCompleted counts not-completed to completed transitions by category
	ChallengesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "challenges_completed_total",
		Help: "Challenges marked completed, by category",
	}, []string{"category"})

	// AchievementsUnlocked counts unlocks by condition
	AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "achievements_unlocked_total",
		Help: "Achievements unlocked, by condition",
	}, []string{"condition"})

	EvaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "achievement_evaluation_duration_seconds",
		Help:    "Time spent evaluating one achievement condition",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"condition"})

	// EvaluationErrors counts swallowed reads and failed writes
	EvaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "achievement_evaluation_errors_total",
		Help: "Achievement evaluation failures by condition and stage",
	}, []string{"condition", "stage"})

	SeedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seed_job_runs_total",
		Help: "Default challenge seeding runs by result",
	}, []string{"result"})

	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "community_feed_cache_lookups_total",
		Help: "Community feed cache lookups by result",
	}, []string{"result"})
)
