package memstore

import (
	"context"
	"sort"

	"github.com/rpupo63/wholspace-backend/models"
)

type followRepo struct {
	s *Store
}

func (r followRepo) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	if follow.ID == "" {
		follow.ID = models.FollowID(follow.FollowerID, follow.FollowingID)
	}
	var created bool
	err := r.s.view(ctx, func(st *state) error {
		if _, ok := st.follows[follow.ID]; ok {
			return nil
		}
		if follow.CreatedAt.IsZero() {
			follow.CreatedAt = r.s.db.now()
		}
		f := *follow
		st.follows[follow.ID] = &f
		created = true
		return nil
	})
	return created, err
}

func (r followRepo) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	id := models.FollowID(followerID, followingID)
	var deleted bool
	err := r.s.view(ctx, func(st *state) error {
		_, deleted = st.follows[id]
		delete(st.follows, id)
		return nil
	})
	return deleted, err
}

func (r followRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	id := models.FollowID(followerID, followingID)
	var exists bool
	err := r.s.view(ctx, func(st *state) error {
		_, exists = st.follows[id]
		return nil
	})
	return exists, err
}

func (r followRepo) ListByFollowing(ctx context.Context, followingID string, limit int) ([]*models.Follow, error) {
	return r.list(ctx, func(f *models.Follow) bool { return f.FollowingID == followingID }, limit)
}

func (r followRepo) ListByFollower(ctx context.Context, followerID string, limit int) ([]*models.Follow, error) {
	return r.list(ctx, func(f *models.Follow) bool { return f.FollowerID == followerID }, limit)
}

func (r followRepo) CountByFollowing(ctx context.Context, followingID string) (int64, error) {
	follows, err := r.ListByFollowing(ctx, followingID, 0)
	return int64(len(follows)), err
}

func (r followRepo) CountByFollower(ctx context.Context, followerID string) (int64, error) {
	follows, err := r.ListByFollower(ctx, followerID, 0)
	return int64(len(follows)), err
}

func (r followRepo) list(ctx context.Context, match func(*models.Follow) bool, limit int) ([]*models.Follow, error) {
	var follows []*models.Follow
	err := r.s.view(ctx, func(st *state) error {
		for _, f := range st.follows {
			if match(f) {
				c := *f
				follows = append(follows, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(follows, func(i, j int) bool {
		if follows[i].CreatedAt.Equal(follows[j].CreatedAt) {
			return follows[i].ID > follows[j].ID
		}
		return follows[i].CreatedAt.After(follows[j].CreatedAt)
	})
	return limited(follows, limit), nil
}
