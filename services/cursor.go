package services

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

// cursorData is the position after the last project of a page
type cursorData struct {
	AfterID   string    `json:"after_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EncodeCursor encodes a page position to an opaque string
func EncodeCursor(c models.ProjectCursor) string {
	if c.ID == "" {
		return ""
	}
	jsonBytes, err := json.Marshal(cursorData{AfterID: c.ID, CreatedAt: c.CreatedAt})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a cursor from EncodeCursor. The empty cursor is the first page.
func DecodeCursor(cursor string) (*models.ProjectCursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, errs.NewBadRequestErrorWithField("invalid cursor", "cursor", err.Error())
	}

	var data cursorData
	if err := json.Unmarshal(decoded, &data); err != nil || data.AfterID == "" || data.CreatedAt.IsZero() {
		return nil, errs.NewBadRequestErrorWithField("invalid cursor", "cursor", "Cursor does not name a position")
	}
	return &models.ProjectCursor{CreatedAt: data.CreatedAt, ID: data.AfterID}, nil
}
