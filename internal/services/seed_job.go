package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/arnold/daily-challenges-api/internal/metrics"
	"github.com/robfig/cron/v3"
)

// SeedJob re-seeds default challenges for users left with none. Failed runs
// are logged; the next tick is the retry.
type SeedJob struct {
	seeder  *Seeder
	log     *slog.Logger
	timeout time.Duration
}

func NewSeedJob(seeder *Seeder, log *slog.Logger) *SeedJob {
	return &SeedJob{seeder: seeder, log: log, timeout: 5 * time.Minute}
}

func (j *SeedJob) Start(cronRunner *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := cronRunner.AddFunc(spec, j.runScheduledTask)
	if err != nil {
		return 0, err
	}
	j.log.Info("seed cronjob scheduled", "cron", spec)
	return id, nil
}

func (j *SeedJob) runScheduledTask() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_ = j.Run(ctx)
}

func (j *SeedJob) Run(ctx context.Context) error {
	start := time.Now()
	seeded, err := j.seeder.SeedAll(ctx)
	if err != nil {
		metrics.SeedRuns.WithLabelValues("error").Inc()
		j.log.Error("seed run failed", "seeded", seeded, "error", err)
		return err
	}
	metrics.SeedRuns.WithLabelValues("ok").Inc()
	j.log.Info("seed run finished", "seeded", seeded, "took", time.Since(start))
	return nil
}
