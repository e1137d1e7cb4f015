// Package memstore is an in-process database.Store. Transactions are serialized: each one
// works on a private copy of the state that replaces the shared state only on success.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/models"
)

type state struct {
	users    map[string]*models.User
	projects map[string]*models.Project
	follows  map[string]*models.Follow
	handles  map[string]*models.HandleReservation
	cleanups map[string]*models.MediaCleanupTask
}

func newState() *state {
	return &state{
		users:    make(map[string]*models.User),
		projects: make(map[string]*models.Project),
		follows:  make(map[string]*models.Follow),
		handles:  make(map[string]*models.HandleReservation),
		cleanups: make(map[string]*models.MediaCleanupTask),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range s.projects {
		c.projects[k] = copyProject(v)
	}
	for k, v := range s.follows {
		f := *v
		c.follows[k] = &f
	}
	for k, v := range s.handles {
		h := *v
		c.handles[k] = &h
	}
	for k, v := range s.cleanups {
		t := *v
		c.cleanups[k] = &t
	}
	return c
}

type memDB struct {
	mu    sync.Mutex
	st    *state
	clock func() time.Time
	last  time.Time
}

// now hands out strictly increasing microsecond timestamps. Callers hold mu.
func (db *memDB) now() time.Time {
	t := db.clock().UTC().Truncate(time.Microsecond)
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

// Store implements database.Store in memory
type Store struct {
	db *memDB
	tx *state
}

var _ database.Store = (*Store)(nil)

// Option configures a Store
type Option func(*memDB)

// WithClock replaces time.Now as the timestamp source
func WithClock(clock func() time.Time) Option {
	return func(db *memDB) {
		db.clock = clock
	}
}

// New returns an empty Store
func New(opts ...Option) *Store {
	db := &memDB{st: newState(), clock: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return &Store{db: db}
}

func (s *Store) Users() database.UserRepository                 { return userRepo{s} }
func (s *Store) Projects() database.ProjectRepository           { return projectRepo{s} }
func (s *Store) Follows() database.FollowRepository             { return followRepo{s} }
func (s *Store) Handles() database.HandleRepository             { return handleRepo{s} }
func (s *Store) MediaCleanups() database.MediaCleanupRepository { return cleanupRepo{s} }

// Transaction runs fn on a private copy of the state and publishes it when fn succeeds
func (s *Store) Transaction(ctx context.Context, fn func(tx database.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	txState := s.db.st.clone()
	if err := fn(&Store{db: s.db, tx: txState}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.st = txState
	return nil
}

// view runs fn against the transaction state, or against the shared state under the lock
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.st)
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Tools = slices.Clone(u.Tools)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func copyProject(p *models.Project) *models.Project {
	c := *p
	c.Screenshots = slices.Clone(p.Screenshots)
	c.Tags = slices.Clone(p.Tags)
	c.LikedBy = slices.Clone(p.LikedBy)
	return &c
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
