package models

import "time"

// Follow is a directed edge from FollowerID to FollowingID
type Follow struct {
	ID          string    `json:"id" gorm:"column:id;type:text;primaryKey;not null"`
	FollowerID  string    `json:"followerId" gorm:"column:follower_id;type:text;not null;index:idx_follows_follower_created,priority:1"`
	FollowingID string    `json:"followingId" gorm:"column:following_id;type:text;not null;index:idx_follows_following_created,priority:1"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime:false;default:now();index:idx_follows_follower_created,priority:2,sort:desc;index:idx_follows_following_created,priority:2,sort:desc"`
}

// FollowID is the deterministic key of the edge followerID -> followingID
func FollowID(followerID, followingID string) string {
	return followerID + "_" + followingID
}
