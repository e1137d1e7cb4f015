package models

import (
	"fmt"
	"time"
)

// MediaCleanupTask is a pending deletion of every stored object under Prefix.
// One task exists per deleted project.
type MediaCleanupTask struct {
	ProjectID     string    `json:"projectId" gorm:"column:project_id;type:text;primaryKey;not null"`
	Prefix        string    `json:"prefix" gorm:"column:prefix;type:text;not null"`
	Attempts      int       `json:"attempts" gorm:"column:attempts;not null;default:0"`
	LastError     string    `json:"lastError" gorm:"column:last_error;type:text;not null;default:''"`
	NextAttemptAt time.Time `json:"nextAttemptAt" gorm:"column:next_attempt_at;not null;index:idx_media_cleanup_next_attempt"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:created_at;not null"`
}

// AvatarKey is the object key of a user's avatar
func AvatarKey(uid, ext string) string {
	return fmt.Sprintf("avatars/%s/avatar.%s", uid, ext)
}

// ProjectMediaPrefix is the key prefix holding every image of a project
func ProjectMediaPrefix(uid, projectID string) string {
	return fmt.Sprintf("projects/%s/%s/", uid, projectID)
}

// ProjectImageKey is the object key of a project image. Slot 0 is the thumbnail.
func ProjectImageKey(uid, projectID string, slot int, ext string) string {
	if slot == 0 {
		return ProjectMediaPrefix(uid, projectID) + "thumbnail." + ext
	}
	return fmt.Sprintf("%sscreenshot_%d.%s", ProjectMediaPrefix(uid, projectID), slot, ext)
}
