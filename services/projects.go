package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

// CreateProject stores a new project of ownerID and bumps the owner's projectCount atomically
func (s *Service) CreateProject(ctx context.Context, ownerID string, in models.ProjectInput) (*models.Project, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}
	published := true
	if in.IsPublished != nil {
		published = *in.IsPublished
	}

	project := &models.Project{
		ID:               uuid.NewString(),
		UserID:           ownerID,
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		DemoURL:          in.DemoURL,
		GithubURL:        in.GithubURL,
		ThumbnailURL:     in.ThumbnailURL,
		Screenshots:      jsonSlice(in.Screenshots),
		Tool:             in.Tool,
		Category:         category,
		Tags:             jsonSlice(in.Tags),
		LikedBy:          datatypes.JSONSlice[string]{},
		IsPublished:      published,
	}

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		owner, err := tx.Users().FindByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return errs.NewNotFound("user")
		}
		if err := tx.Projects().Create(ctx, project); err != nil {
			return err
		}
		return tx.Users().AdjustCounters(ctx, ownerID, models.Counters{ProjectCount: 1})
	})
	if err != nil {
		return nil, wrap("create", "project", err)
	}

	s.logger.Info().Str("projectId", project.ID).Str("uid", ownerID).Msg("created project")
	return project, nil
}

// GetProject returns the project with id
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, wrap("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// RecordProjectView counts a view of id and returns the project
func (s *Service) RecordProjectView(ctx context.Context, id string) (*models.Project, error) {
	if err := s.store.Projects().IncrementViews(ctx, id); err != nil {
		return nil, wrap("view", "project", err)
	}
	return s.GetProject(ctx, id)
}

// UpdateProject merges patch into a project owned by requesterID. Engagement fields and
// counters are not touched.
func (s *Service) UpdateProject(ctx context.Context, id, requesterID string, patch models.ProjectPatch) (*models.Project, error) {
	patch.IsFeatured = nil
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		category := models.DefaultCategory
		patch.Category = &category
	}

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		project, err := tx.Projects().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if project == nil || project.UserID != requesterID {
			return errs.NewUnauthorized("Only the owner can edit this project")
		}
		if patch.IsEmpty() {
			return nil
		}
		return tx.Projects().Update(ctx, id, patch)
	})
	if err != nil {
		return nil, wrap("update", "project", err)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project owned by requesterID, takes it off the owner's projectCount
// and totalLikes, and queues its stored images for deletion, all in one transaction. The images
// are then deleted right away when possible and otherwise by the cleanup worker.
func (s *Service) DeleteProject(ctx context.Context, id, requesterID string) error {
	var task *models.MediaCleanupTask
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		project, err := tx.Projects().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if project == nil || project.UserID != requesterID {
			return errs.NewUnauthorized("Only the owner can delete this project")
		}

		deleted, err := tx.Projects().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return errs.NewNotFound("project")
		}

		delta := models.Counters{ProjectCount: -1, TotalLikes: -project.Likes}
		if err := tx.Users().AdjustCounters(ctx, project.UserID, delta); err != nil {
			return err
		}

		task = &models.MediaCleanupTask{
			ProjectID:     project.ID,
			Prefix:        models.ProjectMediaPrefix(project.UserID, project.ID),
			NextAttemptAt: s.now().UTC(),
		}
		return tx.MediaCleanups().Enqueue(ctx, task)
	})
	if err != nil {
		return wrap("delete", "project", err)
	}

	s.logger.Info().Str("projectId", id).Str("uid", requesterID).Msg("deleted project")
	s.purgeNow(ctx, task)
	return nil
}

// purgeNow makes one attempt at a cleanup task. Failures are left to the cleanup worker.
func (s *Service) purgeNow(ctx context.Context, task *models.MediaCleanupTask) {
	removed, err := s.blob.DeletePrefix(ctx, task.Prefix)
	if err != nil {
		s.logger.Warn().Err(err).Str("projectId", task.ProjectID).Msg("project media cleanup deferred")
		return
	}
	if err := s.store.MediaCleanups().Complete(ctx, task.ProjectID); err != nil {
		s.logger.Warn().Err(err).Str("projectId", task.ProjectID).Msg("failed to complete media cleanup task")
		return
	}
	s.logger.Debug().Str("projectId", task.ProjectID).Int("removed", removed).Msg("project media removed")
}

// LikeProject adds uid to the project's likers. Liking twice is a no-op.
func (s *Service) LikeProject(ctx context.Context, id, uid string) error {
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		project, err := tx.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return errs.NewNotFound("project")
		}
		liker, err := tx.Users().FindByID(ctx, uid)
		if err != nil {
			return err
		}
		if liker == nil {
			return errs.NewNotFound("user")
		}
		added, err := tx.Projects().AddLiker(ctx, id, uid)
		if err != nil || !added {
			return err
		}
		return tx.Users().AdjustCounters(ctx, project.UserID, models.Counters{TotalLikes: 1})
	})
	return wrap("like", "project", err)
}

// UnlikeProject removes uid from the project's likers. Unliking a project that was not liked is a no-op.
func (s *Service) UnlikeProject(ctx context.Context, id, uid string) error {
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		project, err := tx.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return errs.NewNotFound("project")
		}
		removed, err := tx.Projects().RemoveLiker(ctx, id, uid)
		if err != nil || !removed {
			return err
		}
		return tx.Users().AdjustCounters(ctx, project.UserID, models.Counters{TotalLikes: -1})
	})
	return wrap("unlike", "project", err)
}

// HasUserLiked reports whether uid is among the likers of project
func HasUserLiked(project *models.Project, uid string) bool {
	return project.IsLikedBy(uid)
}

func jsonSlice(items []string) datatypes.JSONSlice[string] {
	if items == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](items)
}
