package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/rpupo63/wholspace-backend/models"
)

type handleRepo struct {
	s *Store
}

func (r handleRepo) Find(ctx context.Context, handle string) (*models.HandleReservation, error) {
	var found *models.HandleReservation
	err := r.s.view(ctx, func(st *state) error {
		if h, ok := st.handles[handle]; ok {
			c := *h
			found = &c
		}
		return nil
	})
	return found, err
}

func (r handleRepo) Reserve(ctx context.Context, reservation *models.HandleReservation) (bool, error) {
	var reserved bool
	err := r.s.view(ctx, func(st *state) error {
		if _, ok := st.handles[reservation.Handle]; ok {
			return nil
		}
		if reservation.CreatedAt.IsZero() {
			reservation.CreatedAt = r.s.db.now()
		}
		c := *reservation
		st.handles[reservation.Handle] = &c
		reserved = true
		return nil
	})
	return reserved, err
}

func (r handleRepo) Release(ctx context.Context, handle, uid string) error {
	return r.s.view(ctx, func(st *state) error {
		if h, ok := st.handles[handle]; ok && h.UID == uid {
			delete(st.handles, handle)
		}
		return nil
	})
}

type cleanupRepo struct {
	s *Store
}

func (r cleanupRepo) Enqueue(ctx context.Context, task *models.MediaCleanupTask) error {
	return r.s.view(ctx, func(st *state) error {
		if existing, ok := st.cleanups[task.ProjectID]; ok {
			existing.Prefix = task.Prefix
			existing.NextAttemptAt = task.NextAttemptAt
			return nil
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = r.s.db.now()
		}
		c := *task
		st.cleanups[task.ProjectID] = &c
		return nil
	})
}

func (r cleanupRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.MediaCleanupTask, error) {
	var tasks []*models.MediaCleanupTask
	err := r.s.view(ctx, func(st *state) error {
		for _, t := range st.cleanups {
			if !t.NextAttemptAt.After(now) {
				c := *t
				tasks = append(tasks, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].NextAttemptAt.Equal(tasks[j].NextAttemptAt) {
			return tasks[i].ProjectID < tasks[j].ProjectID
		}
		return tasks[i].NextAttemptAt.Before(tasks[j].NextAttemptAt)
	})
	return limited(tasks, limit), nil
}

func (r cleanupRepo) Complete(ctx context.Context, projectID string) error {
	return r.s.view(ctx, func(st *state) error {
		delete(st.cleanups, projectID)
		return nil
	})
}

func (r cleanupRepo) Reschedule(ctx context.Context, projectID string, attempts int, next time.Time, lastErr string) error {
	return r.s.view(ctx, func(st *state) error {
		if t, ok := st.cleanups[projectID]; ok {
			t.Attempts = attempts
			t.NextAttemptAt = next
			t.LastError = lastErr
		}
		return nil
	})
}
