package cron

import (
	"context"
	"os"
	"path/filepath"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/tracing"
)

// CronManager schedules the background maintenance jobs. The only job today
// is the scratch sweep, which removes request artifacts a crashed handler
// never cleaned up.
type CronManager struct {
	cfg    *config.Config
	log    logger.Logger
	cron   *cronv3.Cron
	jobIDs map[string]cronv3.EntryID
}

func NewCronManager(cfg *config.Config, log logger.Logger) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		jobIDs: make(map[string]cronv3.EntryID),
	}
}

// Start initializes and starts the cron scheduler.
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")

	cronOptions := []cronv3.Option{
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop halts the scheduler and waits for running jobs to finish.
func (cm *CronManager) Stop() {
	if cm.cron == nil {
		return
	}
	ctx := cm.cron.Stop()
	<-ctx.Done()
	cm.log.Info("Cron manager stopped")
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	schedule := cm.cfg.CronConfig.ScratchSweepSchedule
	if schedule == "" {
		return
	}

	id, err := c.AddFunc(schedule, func() {
		cm.sweepScratchDir()
	})
	if err != nil {
		cm.log.Fatalf("Could not add scratch sweep cron job: %v", err)
	}
	cm.jobIDs["scratch_sweep"] = id
	cm.log.Infof("Registered scratch sweep job with schedule: %s", schedule)
}

// sweepScratchDir deletes scratch files older than the configured age.
func (cm *CronManager) sweepScratchDir() {
	ctx := context.Background()

	span, _ := tracing.StartTracerSpan(ctx, "CronManager.sweepScratchDir")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	dir := cm.cfg.AppConfig.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	maxAge := time.Duration(cm.cfg.CronConfig.ScratchMaxAgeMinutes) * time.Minute
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to read scratch directory %s: %v", dir, err)
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isScratchName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			cm.log.Warnf("Failed to remove stale scratch file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	span.SetTag("removed", removed)
	if removed > 0 {
		cm.log.Infof("Scratch sweep removed %d stale files", removed)
	}
}

// isScratchName matches the prefixes the request handlers write under.
func isScratchName(name string) bool {
	prefixes := []string{"register-face-", "auth-face-", "speech-"}
	for _, p := range prefixes {
		if len(name) > len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}
