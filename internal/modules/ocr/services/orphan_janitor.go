package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/repositories"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
	"github.com/robfig/cron/v3"
)

const orphanSweepBatch = 100

// OrphanJanitor retries deletion of objects whose cleanup failed earlier
type OrphanJanitor struct {
	repo        repositories.OrphanRepo
	store       ObjectStore
	maxAttempts int
	timeout     time.Duration
	cron        *cron.Cron
}

// NewOrphanJanitor creates a janitor. Rows with maxAttempts or more failed
// attempts are left alone.
func NewOrphanJanitor(repo repositories.OrphanRepo, store ObjectStore, maxAttempts int) *OrphanJanitor {
	return &OrphanJanitor{
		repo:        repo,
		store:       store,
		maxAttempts: maxAttempts,
		timeout:     5 * time.Minute,
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (j *OrphanJanitor) Start(schedule string) error {
	if schedule == "" {
		utils.LogInfo("⏰ Orphan janitor disabled", nil)
		return nil
	}

	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	j.cron.Start()
	utils.LogInfo("✅ Orphan janitor started", map[string]interface{}{"schedule": schedule})
	return nil
}

// Stop stops the scheduler and waits for a running sweep
func (j *OrphanJanitor) Stop() {
	<-j.cron.Stop().Done()
	utils.LogInfo("✅ Orphan janitor stopped", nil)
}

// Sweep retries one batch and returns how many objects were removed and how
// many failed again.
func (j *OrphanJanitor) Sweep(ctx context.Context) (cleaned, failed int) {
	if j.store == nil {
		return 0, 0
	}

	orphans, err := j.repo.ListPending(ctx, j.maxAttempts, orphanSweepBatch)
	if err != nil {
		utils.LogError("❌ Failed to list orphaned objects", err, nil)
		return 0, 0
	}

	for _, orphan := range orphans {
		fields := map[string]interface{}{"path": orphan.Path, "attempts": orphan.Attempts + 1}

		if err := j.store.Delete(ctx, orphan.Path); err != nil {
			failed++
			utils.BestEffort("orphan attempt update", fields, func() error {
				return j.repo.MarkAttempt(ctx, orphan.ID, err.Error())
			})
			continue
		}

		cleaned++
		utils.BestEffort("orphan record removal", fields, func() error {
			return j.repo.Delete(ctx, orphan.ID)
		})
	}

	if cleaned > 0 || failed > 0 {
		utils.LogInfo("🧹 Orphan sweep finished", map[string]interface{}{"cleaned": cleaned, "failed": failed})
	}
	return cleaned, failed
}
