package utils

import (
	"context"
	"lms/services/learning"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// PathReconciler is the part of the learning service the scheduler drives
type PathReconciler interface {
	ReconcilePaths(ctx context.Context) (int, error)
}

var _ PathReconciler = (*learning.Service)(nil)

// InitializeProgressScheduler registers the nightly learning path
// reconciliation and starts the scheduler.
func InitializeProgressScheduler(reconciler PathReconciler, spec string) (*cron.Cron, error) {
	log.Println("[PROGRESS-SCHEDULER] Initializing progress scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { RunPathReconciliation(reconciler) }); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[PROGRESS-SCHEDULER] Progress scheduler started - path reconciliation runs at %q", spec)
	return c, nil
}

// RunPathReconciliation replays pending learning path cascades once
func RunPathReconciliation(reconciler PathReconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	log.Println("[PROGRESS-SCHEDULER] Running learning path reconciliation...")
	n, err := reconciler.ReconcilePaths(ctx)
	if err != nil {
		log.Printf("[PROGRESS-SCHEDULER] Reconciliation stopped after %d enrollments: %v", n, err)
		return
	}
	log.Printf("[PROGRESS-SCHEDULER] Reconciled %d completed enrollments in %s", n, time.Since(start).Round(time.Millisecond))
}
