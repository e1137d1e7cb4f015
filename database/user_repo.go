package database

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// Create inserts a new user profile
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID returns a user by uid, reading from the primary
func (r *UserRepo) FindByID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("uid = ?", uid).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByHandle returns the user currently showing a normalized handle
func (r *UserRepo) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	if handle == "" {
		return nil, nil
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("handle = ?", handle).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update merges the patch into the profile and stamps updated_at
func (r *UserRepo) Update(ctx context.Context, uid string, patch models.UserPatch) error {
	cols := patch.Columns()
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("user")
	}
	return nil
}

// TouchLastLogin stamps last_login_at
func (r *UserRepo) TouchLastLogin(ctx context.Context, uid string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).
		UpdateColumn("last_login_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("user")
	}
	return nil
}

// AdjustCounters adds delta to the counters in a single UPDATE so concurrent
// adjustments never overwrite each other
func (r *UserRepo) AdjustCounters(ctx context.Context, uid string, delta models.Counters) error {
	if delta.IsZero() {
		return nil
	}

	cols := make(map[string]any, 4)
	if delta.ProjectCount != 0 {
		cols["project_count"] = gorm.Expr("project_count + ?", delta.ProjectCount)
	}
	if delta.FollowerCount != 0 {
		cols["follower_count"] = gorm.Expr("follower_count + ?", delta.FollowerCount)
	}
	if delta.FollowingCount != 0 {
		cols["following_count"] = gorm.Expr("following_count + ?", delta.FollowingCount)
	}
	if delta.TotalLikes != 0 {
		cols["total_likes"] = gorm.Expr("total_likes + ?", delta.TotalLikes)
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("user")
	}
	return nil
}

// SetCounters overwrites the counters with absolute values
func (r *UserRepo) SetCounters(ctx context.Context, uid string, counters models.Counters) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).UpdateColumns(map[string]any{
		"project_count":   counters.ProjectCount,
		"follower_count":  counters.FollowerCount,
		"following_count": counters.FollowingCount,
		"total_likes":     counters.TotalLikes,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("user")
	}
	return nil
}

// Delete removes a user profile by uid
func (r *UserRepo) Delete(ctx context.Context, uid string) (bool, error) {
	res := r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&models.User{})
	return res.RowsAffected > 0, res.Error
}

// List returns users matching q
func (r *UserRepo) List(ctx context.Context, q UserQuery) ([]*models.User, error) {
	query := r.filter(r.db.WithContext(ctx), q)

	switch q.OrderBy {
	case UserOrderProjectCountDesc:
		query = query.Order("project_count DESC").Order("uid")
	case UserOrderDisplayName:
		query = query.Order("display_name").Order("uid")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var users []*models.User
	err := query.Find(&users).Error
	return users, err
}

// Count returns the number of users matching q
func (r *UserRepo) Count(ctx context.Context, q UserQuery) (int64, error) {
	var total int64
	err := r.filter(r.db.WithContext(ctx).Model(&models.User{}), q).Count(&total).Error
	return total, err
}

func (r *UserRepo) filter(query *gorm.DB, q UserQuery) *gorm.DB {
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if q.ProfileCompleteOnly {
		query = query.Where("is_profile_complete = ?", true)
	}
	return query
}
