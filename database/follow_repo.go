package database

import (
	"context"

	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type FollowRepo struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) *FollowRepo {
	return &FollowRepo{db}
}

// Create inserts the edge with ON CONFLICT DO NOTHING on its composite key
func (r *FollowRepo) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	if follow.ID == "" {
		follow.ID = models.FollowID(follow.FollowerID, follow.FollowingID)
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the edge followerID -> followingID
func (r *FollowRepo) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", models.FollowID(followerID, followingID)).Delete(&models.Follow{})
	return res.RowsAffected > 0, res.Error
}

// Exists is a primary key lookup of the edge
func (r *FollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.Follow{}).
		Where("id = ?", models.FollowID(followerID, followingID)).
		Count(&count).Error
	return count > 0, err
}

// ListByFollowing returns the edges pointing at followingID, newest first
func (r *FollowRepo) ListByFollowing(ctx context.Context, followingID string, limit int) ([]*models.Follow, error) {
	return r.list(ctx, "following_id", followingID, limit)
}

// ListByFollower returns the edges leaving followerID, newest first
func (r *FollowRepo) ListByFollower(ctx context.Context, followerID string, limit int) ([]*models.Follow, error) {
	return r.list(ctx, "follower_id", followerID, limit)
}

func (r *FollowRepo) list(ctx context.Context, column, uid string, limit int) ([]*models.Follow, error) {
	query := r.db.WithContext(ctx).Where(column+" = ?", uid).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var follows []*models.Follow
	err := query.Find(&follows).Error
	return follows, err
}

func (r *FollowRepo) CountByFollowing(ctx context.Context, followingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.Follow{}).Where("following_id = ?", followingID).Count(&count).Error
	return count, err
}

func (r *FollowRepo) CountByFollower(ctx context.Context, followerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.Follow{}).Where("follower_id = ?", followerID).Count(&count).Error
	return count, err
}
