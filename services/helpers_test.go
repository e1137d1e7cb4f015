package services_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/wholspace-backend/auth"
	"github.com/rpupo63/wholspace-backend/database/memstore"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
	"github.com/rpupo63/wholspace-backend/storage"
)

const blobBaseURL = "https://cdn.test"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc   *services.Service
	store *memstore.Store
	blob  *storage.Memory
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newFakeClock()
	store := memstore.New()
	blob := storage.NewMemory(blobBaseURL)
	svc := services.New(store, blob,
		services.WithClock(clock.Now),
		services.WithCleanupRetry(services.RetryOptions{
			MaxElapsedTime:  time.Second,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			MaxRetries:      0,
		}),
	)
	return &fixture{svc: svc, store: store, blob: blob, clock: clock}
}

// user signs uid in for the first time
func (f *fixture) user(t *testing.T, uid string) *models.User {
	t.Helper()
	user, err := f.svc.SyncUser(context.Background(), auth.Identity{
		UID:            uid,
		Email:          uid + "@example.com",
		EmailVerified:  true,
		DisplayName:    uid,
		SignInProvider: "google.com",
	})
	require.NoError(t, err)
	return user
}

// completeUser creates uid with a complete profile under handle
func (f *fixture) completeUser(t *testing.T, uid, displayName, handle string) *models.User {
	t.Helper()
	f.user(t, uid)
	user, err := f.svc.CompleteProfile(context.Background(), uid, models.UserPatch{
		DisplayName: &displayName,
		Handle:      &handle,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) project(t *testing.T, ownerID, title string) *models.Project {
	t.Helper()
	project, err := f.svc.CreateProject(context.Background(), ownerID, models.ProjectInput{
		Title: title,
		Tool:  "Cursor",
	})
	require.NoError(t, err)
	return project
}

func (f *fixture) reload(t *testing.T, uid string) *models.User {
	t.Helper()
	user, err := f.svc.GetUser(context.Background(), uid)
	require.NoError(t, err)
	return user
}

func image(contentType string, size int) services.Upload {
	return services.Upload{
		Filename:    "shot.png",
		ContentType: contentType,
		Size:        int64(size),
		Body:        bytes.NewReader(bytes.Repeat([]byte{0x89}, size)),
	}
}

func ptr[T any](v T) *T {
	return &v
}
