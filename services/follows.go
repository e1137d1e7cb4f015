package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

// lookups made concurrently when resolving a follow list
const resolveConcurrency = 8

// FollowUser adds the edge followerID -> followingID. Following twice is a no-op; the counters
// of both users move only when the edge is new.
func (s *Service) FollowUser(ctx context.Context, followerID, followingID string) error {
	if followingID == "" {
		return errs.NewBadRequestErrorWithField("missing user", "followingId", "A user to follow is required")
	}
	if followerID == followingID {
		return errs.NewInvalidOperation("Users cannot follow themselves")
	}

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		created, err := tx.Follows().Create(ctx, &models.Follow{
			FollowerID:  followerID,
			FollowingID: followingID,
		})
		if err != nil || !created {
			return err
		}
		if err := tx.Users().AdjustCounters(ctx, followerID, models.Counters{FollowingCount: 1}); err != nil {
			return err
		}
		return tx.Users().AdjustCounters(ctx, followingID, models.Counters{FollowerCount: 1})
	})
	return wrap("follow", "user", err)
}

// UnfollowUser removes the edge followerID -> followingID if it exists
func (s *Service) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		deleted, err := tx.Follows().Delete(ctx, followerID, followingID)
		if err != nil || !deleted {
			return err
		}
		if err := tx.Users().AdjustCounters(ctx, followerID, models.Counters{FollowingCount: -1}); err != nil {
			return err
		}
		return tx.Users().AdjustCounters(ctx, followingID, models.Counters{FollowerCount: -1})
	})
	return wrap("unfollow", "user", err)
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followerID == followingID {
		return false, nil
	}
	exists, err := s.store.Follows().Exists(ctx, followerID, followingID)
	if err != nil {
		return false, wrap("find", "follow", err)
	}
	return exists, nil
}

// ListFollowers returns the newest followers of userID first
func (s *Service) ListFollowers(ctx context.Context, userID string, limit int) ([]*models.User, error) {
	edges, err := s.store.Follows().ListByFollowing(ctx, userID, orDefault(limit, defaultFollowListLimit))
	if err != nil {
		return nil, wrap("list", "followers", err)
	}
	ids := make([]string, len(edges))
	for i, edge := range edges {
		ids[i] = edge.FollowerID
	}
	return s.resolveUsers(ctx, ids)
}

// ListFollowing returns the users userID most recently followed first
func (s *Service) ListFollowing(ctx context.Context, userID string, limit int) ([]*models.User, error) {
	edges, err := s.store.Follows().ListByFollower(ctx, userID, orDefault(limit, defaultFollowListLimit))
	if err != nil {
		return nil, wrap("list", "following", err)
	}
	ids := make([]string, len(edges))
	for i, edge := range edges {
		ids[i] = edge.FollowingID
	}
	return s.resolveUsers(ctx, ids)
}

// resolveUsers loads ids concurrently, keeping their order and dropping users that no longer exist
func (s *Service) resolveUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	resolved := make([]*models.User, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			user, err := s.store.Users().FindByID(gctx, id)
			resolved[i] = user
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrap("find", "user", err)
	}

	users := make([]*models.User, 0, len(resolved))
	for _, user := range resolved {
		if user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}
