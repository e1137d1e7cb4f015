package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

type userRepo struct {
	s *Store
}

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.users[user.UID]; ok {
			return errs.NewDatabaseError("create", "user", errDuplicateKey)
		}
		now := r.s.db.now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		if user.UpdatedAt.IsZero() {
			user.UpdatedAt = user.CreatedAt
		}
		st.users[user.UID] = copyUser(user)
		return nil
	})
}

func (r userRepo) FindByID(ctx context.Context, uid string) (*models.User, error) {
	var found *models.User
	err := r.s.view(ctx, func(st *state) error {
		if u, ok := st.users[uid]; ok {
			found = copyUser(u)
		}
		return nil
	})
	return found, err
}

func (r userRepo) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	if handle == "" {
		return nil, nil
	}
	var found *models.User
	err := r.s.view(ctx, func(st *state) error {
		for _, u := range sortedUsers(st) {
			if u.Handle == handle {
				found = copyUser(u)
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r userRepo) Update(ctx context.Context, uid string, patch models.UserPatch) error {
	return r.s.view(ctx, func(st *state) error {
		u, ok := st.users[uid]
		if !ok {
			return errs.NewNotFound("user")
		}
		patch.Apply(u)
		u.UpdatedAt = r.s.db.now()
		return nil
	})
}

func (r userRepo) TouchLastLogin(ctx context.Context, uid string) error {
	return r.s.view(ctx, func(st *state) error {
		u, ok := st.users[uid]
		if !ok {
			return errs.NewNotFound("user")
		}
		now := r.s.db.now()
		u.LastLoginAt = &now
		return nil
	})
}

func (r userRepo) AdjustCounters(ctx context.Context, uid string, delta models.Counters) error {
	if delta.IsZero() {
		return nil
	}
	return r.s.view(ctx, func(st *state) error {
		u, ok := st.users[uid]
		if !ok {
			return errs.NewNotFound("user")
		}
		setCounters(u, u.Counters().Add(delta))
		return nil
	})
}

func (r userRepo) SetCounters(ctx context.Context, uid string, counters models.Counters) error {
	return r.s.view(ctx, func(st *state) error {
		u, ok := st.users[uid]
		if !ok {
			return errs.NewNotFound("user")
		}
		setCounters(u, counters)
		return nil
	})
}

func (r userRepo) Delete(ctx context.Context, uid string) (bool, error) {
	var deleted bool
	err := r.s.view(ctx, func(st *state) error {
		_, deleted = st.users[uid]
		delete(st.users, uid)
		return nil
	})
	return deleted, err
}

func (r userRepo) List(ctx context.Context, q database.UserQuery) ([]*models.User, error) {
	var users []*models.User
	err := r.s.view(ctx, func(st *state) error {
		matched := filterUsers(st, q)
		switch q.OrderBy {
		case database.UserOrderProjectCountDesc:
			sort.SliceStable(matched, func(i, j int) bool {
				return matched[i].ProjectCount > matched[j].ProjectCount
			})
		case database.UserOrderDisplayName:
			sort.SliceStable(matched, func(i, j int) bool {
				return strings.Compare(matched[i].DisplayName, matched[j].DisplayName) < 0
			})
		}
		for _, u := range limited(matched, q.Limit) {
			users = append(users, copyUser(u))
		}
		return nil
	})
	return users, err
}

func (r userRepo) Count(ctx context.Context, q database.UserQuery) (int64, error) {
	var total int64
	err := r.s.view(ctx, func(st *state) error {
		total = int64(len(filterUsers(st, q)))
		return nil
	})
	return total, err
}

func filterUsers(st *state, q database.UserQuery) []*models.User {
	var matched []*models.User
	for _, u := range sortedUsers(st) {
		if q.FeaturedOnly && !u.IsFeatured {
			continue
		}
		if q.ProfileCompleteOnly && !u.IsProfileComplete {
			continue
		}
		matched = append(matched, u)
	}
	return matched
}

// sortedUsers orders users by uid so listings are deterministic
func sortedUsers(st *state) []*models.User {
	users := make([]*models.User, 0, len(st.users))
	for _, u := range st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })
	return users
}

func setCounters(u *models.User, c models.Counters) {
	u.ProjectCount = c.ProjectCount
	u.FollowerCount = c.FollowerCount
	u.FollowingCount = c.FollowingCount
	u.TotalLikes = c.TotalLikes
}
