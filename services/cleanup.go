package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	cleanupBatchSize     = 50
	cleanupBaseDelay     = 30 * time.Second
	cleanupMaxDelay      = 6 * time.Hour
	defaultCleanupPeriod = time.Minute
)

// CleanupResult summarizes one pass of the cleanup worker
type CleanupResult struct {
	Processed int
	Completed int
	Failed    int
}

// CleanupWorker deletes the stored images of deleted projects. Failed tasks are retried with
// an exponentially growing delay.
type CleanupWorker struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func (s *Service) NewCleanupWorker(interval time.Duration) *CleanupWorker {
	if interval <= 0 {
		interval = defaultCleanupPeriod
	}
	return &CleanupWorker{
		svc:      s,
		interval: interval,
		logger:   log.With().Str("component", "mediaCleanupWorker").Logger(),
	}
}

// Run processes due tasks every interval until ctx is done
func (w *CleanupWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("media cleanup worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("media cleanup pass failed")
		}
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("media cleanup worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce drains the tasks that are due now
func (w *CleanupWorker) RunOnce(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	store := w.svc.store.MediaCleanups()

	tasks, err := store.ListDue(ctx, w.svc.now().UTC(), cleanupBatchSize)
	if err != nil {
		return result, wrap("list", "media cleanup tasks", err)
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Processed++

		removed, err := withRetry(ctx, func() (int, error) {
			return w.svc.blob.DeletePrefix(ctx, task.Prefix)
		}, w.svc.cleanupRetry)
		if err != nil {
			result.Failed++
			attempts := task.Attempts + 1
			next := w.svc.now().UTC().Add(cleanupDelay(attempts))
			w.logger.Warn().Err(err).
				Str("projectId", task.ProjectID).
				Int("attempts", attempts).
				Time("nextAttemptAt", next).
				Msg("media cleanup failed")
			if err := store.Reschedule(ctx, task.ProjectID, attempts, next, err.Error()); err != nil {
				return result, wrap("reschedule", "media cleanup task", err)
			}
			continue
		}

		if err := store.Complete(ctx, task.ProjectID); err != nil {
			return result, wrap("complete", "media cleanup task", err)
		}
		result.Completed++
		w.logger.Debug().Str("projectId", task.ProjectID).Int("removed", removed).Msg("project media removed")
	}

	if result.Processed > 0 {
		w.logger.Info().
			Int("processed", result.Processed).
			Int("completed", result.Completed).
			Int("failed", result.Failed).
			Msg("media cleanup pass finished")
	}
	return result, nil
}

// cleanupDelay is the wait before attempt number attempts+1
func cleanupDelay(attempts int) time.Duration {
	delay := cleanupBaseDelay
	for i := 1; i < attempts && delay < cleanupMaxDelay; i++ {
		delay *= 2
	}
	return min(delay, cleanupMaxDelay)
}
