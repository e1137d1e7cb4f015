package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Database & Storage Specific Errors
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrDatabaseQuery = errors.New("database query failed")
)

// NewDatabaseError classifies a store failure during operation on entity.
// Errors that are already an *ApiErr pass through untouched so domain errors raised
// inside a transaction keep their meaning.
func NewDatabaseError(operation, entity string, cause error) error {
	if cause == nil {
		return nil
	}

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return cause
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s %w", entity, ErrNotFound),
			Details:    details,
			Cause:      cause,
		}
	}

	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		return NewStoreUnavailable(fmt.Sprintf("%s %s", operation, entity), cause)
	}

	errStr := cause.Error()
	switch {
	case strings.Contains(errStr, "duplicate key"), errors.Is(cause, gorm.ErrDuplicatedKey):
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
			Details:    details,
			Cause:      cause,
		}
	case strings.Contains(errStr, "connection"),
		strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "broken pipe"),
		errors.Is(cause, gorm.ErrInvalidDB):
		return NewStoreUnavailable(fmt.Sprintf("%s %s", operation, entity), cause)
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

