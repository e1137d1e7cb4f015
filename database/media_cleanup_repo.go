package database

import (
	"context"
	"time"

	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type MediaCleanupRepo struct {
	db *gorm.DB
}

func NewMediaCleanupRepo(db *gorm.DB) *MediaCleanupRepo {
	return &MediaCleanupRepo{db}
}

// Enqueue upserts the task keyed by project id
func (r *MediaCleanupRepo) Enqueue(ctx context.Context, task *models.MediaCleanupTask) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"prefix", "next_attempt_at"}),
	}).Create(task).Error
}

// ListDue returns tasks whose next attempt is at or before now, oldest first
func (r *MediaCleanupRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.MediaCleanupTask, error) {
	query := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at").
		Order("project_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var tasks []*models.MediaCleanupTask
	err := query.Find(&tasks).Error
	return tasks, err
}

// Complete drops a finished task
func (r *MediaCleanupRepo) Complete(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.MediaCleanupTask{}).Error
}

// Reschedule records a failed attempt
func (r *MediaCleanupRepo) Reschedule(ctx context.Context, projectID string, attempts int, next time.Time, lastErr string) error {
	return r.db.WithContext(ctx).Model(&models.MediaCleanupTask{}).Where("project_id = ?", projectID).
		UpdateColumns(map[string]any{
			"attempts":        attempts,
			"next_attempt_at": next,
			"last_error":      lastErr,
		}).Error
}
