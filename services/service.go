// Package services is the application layer over database.Store. It owns every write that
// touches the users' denormalized counters.
package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/storage"
)

const (
	defaultFollowListLimit   = 20
	defaultFeaturedUserLimit = 6
	defaultPageSize          = 12
	defaultFeaturedLimit     = 6
	defaultSearchLimit       = 10
	searchCandidateLimit     = 50
	maxPageSize              = 100
)

type Service struct {
	store        database.Store
	blob         storage.Blob
	logger       zerolog.Logger
	now          func() time.Time
	cleanupRetry RetryOptions
}

type Option func(*Service)

// WithClock replaces time.Now for login stamps and cleanup scheduling
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithCleanupRetry sets the retry policy of each blob deletion made by the cleanup worker
func WithCleanupRetry(opts RetryOptions) Option {
	return func(s *Service) {
		s.cleanupRetry = opts
	}
}

func New(store database.Store, blob storage.Blob, opts ...Option) *Service {
	s := &Service{
		store:        store,
		blob:         blob,
		logger:       log.With().Str("component", "services").Logger(),
		now:          time.Now,
		cleanupRetry: GetCleanupRetryOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxPageSize)
}

func wrap(operation, entity string, err error) error {
	return errs.NewDatabaseError(operation, entity, err)
}
