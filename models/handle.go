package models

import (
	"regexp"
	"strings"
	"time"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// HandleReservation owns a normalized handle on behalf of a single user
type HandleReservation struct {
	Handle    string    `json:"handle" gorm:"column:handle;type:text;primaryKey;not null"`
	UID       string    `json:"uid" gorm:"column:uid;type:text;not null;index:idx_handles_uid"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null"`
}

// NormalizeHandle lowercases and trims a handle, dropping a leading '@'
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ValidHandle reports whether a normalized handle is acceptable
func ValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}
