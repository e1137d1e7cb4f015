package database

import (
	"context"
	"time"

	"github.com/rpupo63/wholspace-backend/models"
)

// Store is the transactional document store the services layer runs on.
//
// Reads of absent rows return (nil, nil). Updates and counter adjustments of absent rows
// return an errs.ErrNotFound error, which aborts the surrounding transaction.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Follows() FollowRepository
	Handles() HandleRepository
	MediaCleanups() MediaCleanupRepository

	// Transaction runs fn against a Store whose writes commit together when fn returns nil
	// and are discarded otherwise. Calling Transaction on the tx Store runs fn in place.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserOrder selects the ordering of a user listing
type UserOrder int

const (
	UserOrderNone UserOrder = iota
	UserOrderProjectCountDesc
	UserOrderDisplayName
)

// UserQuery filters a user listing
type UserQuery struct {
	FeaturedOnly        bool
	ProfileCompleteOnly bool
	OrderBy             UserOrder
	Limit               int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, uid string) (*models.User, error)
	FindByHandle(ctx context.Context, handle string) (*models.User, error)
	Update(ctx context.Context, uid string, patch models.UserPatch) error
	TouchLastLogin(ctx context.Context, uid string) error
	AdjustCounters(ctx context.Context, uid string, delta models.Counters) error
	SetCounters(ctx context.Context, uid string, counters models.Counters) error
	Delete(ctx context.Context, uid string) (bool, error)
	List(ctx context.Context, q UserQuery) ([]*models.User, error)
	Count(ctx context.Context, q UserQuery) (int64, error)
}

// ProjectQuery filters a project listing. Results are ordered by createdAt desc, id desc.
type ProjectQuery struct {
	UserID        string
	Category      string
	Tool          string
	PublishedOnly bool
	FeaturedOnly  bool
	After         *models.ProjectCursor
	Limit         int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	// FindForUpdate reads a project and holds it against concurrent writers until the
	// surrounding transaction ends
	FindForUpdate(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) error
	Delete(ctx context.Context, id string) (bool, error)
	// AddLiker adds uid to likedBy and increments likes. It reports false when uid already liked.
	AddLiker(ctx context.Context, id, uid string) (bool, error)
	// RemoveLiker removes uid from likedBy and decrements likes. It reports false when uid had not liked.
	RemoveLiker(ctx context.Context, id, uid string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, q ProjectQuery) ([]*models.Project, error)
	Count(ctx context.Context, q ProjectQuery) (int64, error)
	SumLikes(ctx context.Context, userID string) (int64, error)
}

type FollowRepository interface {
	// Create inserts the edge unless it already exists and reports whether it was inserted
	Create(ctx context.Context, follow *models.Follow) (bool, error)
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListByFollowing(ctx context.Context, followingID string, limit int) ([]*models.Follow, error)
	ListByFollower(ctx context.Context, followerID string, limit int) ([]*models.Follow, error)
	CountByFollowing(ctx context.Context, followingID string) (int64, error)
	CountByFollower(ctx context.Context, followerID string) (int64, error)
}

type HandleRepository interface {
	Find(ctx context.Context, handle string) (*models.HandleReservation, error)
	// Reserve inserts the reservation unless the handle is already held and reports whether it was inserted
	Reserve(ctx context.Context, reservation *models.HandleReservation) (bool, error)
	Release(ctx context.Context, handle, uid string) error
}

type MediaCleanupRepository interface {
	// Enqueue inserts the task or, if one exists for the project, makes it due again
	Enqueue(ctx context.Context, task *models.MediaCleanupTask) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.MediaCleanupTask, error)
	Complete(ctx context.Context, projectID string) error
	Reschedule(ctx context.Context, projectID string, attempts int, next time.Time, lastErr string) error
}
