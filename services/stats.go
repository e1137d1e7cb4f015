package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

// GetPlatformStats counts builders with complete profiles and published projects
func (s *Service) GetPlatformStats(ctx context.Context) (models.PlatformStats, error) {
	var stats models.PlatformStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.store.Users().Count(gctx, database.UserQuery{ProfileCompleteOnly: true})
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalProjects, err = s.store.Projects().Count(gctx, database.ProjectQuery{PublishedOnly: true})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PlatformStats{}, wrap("count", "platform stats", err)
	}
	return stats, nil
}

// GetUserProjectCounts reports the stored projectCount of userID next to live counts of all
// and of published projects
func (s *Service) GetUserProjectCounts(ctx context.Context, userID string) (models.ProjectCounts, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.ProjectCounts{}, err
	}

	counts := models.ProjectCounts{Stored: user.ProjectCount}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts.All, err = s.store.Projects().Count(gctx, database.ProjectQuery{UserID: userID})
		return err
	})
	g.Go(func() error {
		var err error
		counts.Published, err = s.store.Projects().Count(gctx, database.ProjectQuery{UserID: userID, PublishedOnly: true})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ProjectCounts{}, wrap("count", "projects", err)
	}
	return counts, nil
}

// ReconcileUserCounters recomputes the counters of userID from the follows and projects it
// summarizes and rewrites them in one transaction
func (s *Service) ReconcileUserCounters(ctx context.Context, userID string) (models.CounterReconciliation, error) {
	result := models.CounterReconciliation{UID: userID}

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errs.NewNotFound("user")
		}
		result.Before = user.Counters()

		if result.After.FollowerCount, err = tx.Follows().CountByFollowing(ctx, userID); err != nil {
			return err
		}
		if result.After.FollowingCount, err = tx.Follows().CountByFollower(ctx, userID); err != nil {
			return err
		}
		if result.After.ProjectCount, err = tx.Projects().Count(ctx, database.ProjectQuery{UserID: userID}); err != nil {
			return err
		}
		if result.After.TotalLikes, err = tx.Projects().SumLikes(ctx, userID); err != nil {
			return err
		}

		if !result.Drifted() {
			return nil
		}
		return tx.Users().SetCounters(ctx, userID, result.After)
	})
	if err != nil {
		return models.CounterReconciliation{}, wrap("reconcile", "user counters", err)
	}

	if result.Drifted() {
		s.logger.Warn().
			Str("uid", userID).
			Interface("before", result.Before).
			Interface("after", result.After).
			Msg("repaired drifted counters")
	}
	return result, nil
}
