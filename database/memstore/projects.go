package memstore

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

var errDuplicateKey = errors.New("duplicate key value violates primary key")

type projectRepo struct {
	s *Store
}

func (r projectRepo) Create(ctx context.Context, project *models.Project) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.projects[project.ID]; ok {
			return errs.NewDatabaseError("create", "project", errDuplicateKey)
		}
		now := r.s.db.now()
		if project.CreatedAt.IsZero() {
			project.CreatedAt = now
		}
		if project.UpdatedAt.IsZero() {
			project.UpdatedAt = project.CreatedAt
		}
		st.projects[project.ID] = copyProject(project)
		return nil
	})
}

func (r projectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var found *models.Project
	err := r.s.view(ctx, func(st *state) error {
		if p, ok := st.projects[id]; ok {
			found = copyProject(p)
		}
		return nil
	})
	return found, err
}

// FindForUpdate needs no lock beyond the transaction, which already excludes other writers
func (r projectRepo) FindForUpdate(ctx context.Context, id string) (*models.Project, error) {
	return r.FindByID(ctx, id)
}

func (r projectRepo) Update(ctx context.Context, id string, patch models.ProjectPatch) error {
	return r.s.view(ctx, func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return errs.NewNotFound("project")
		}
		patch.Apply(p)
		p.UpdatedAt = r.s.db.now()
		return nil
	})
}

func (r projectRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.s.view(ctx, func(st *state) error {
		_, deleted = st.projects[id]
		delete(st.projects, id)
		return nil
	})
	return deleted, err
}

func (r projectRepo) AddLiker(ctx context.Context, id, uid string) (bool, error) {
	var added bool
	err := r.s.view(ctx, func(st *state) error {
		p, ok := st.projects[id]
		if !ok || slices.Contains(p.LikedBy, uid) {
			return nil
		}
		p.LikedBy = append(p.LikedBy, uid)
		p.Likes++
		added = true
		return nil
	})
	return added, err
}

func (r projectRepo) RemoveLiker(ctx context.Context, id, uid string) (bool, error) {
	var removed bool
	err := r.s.view(ctx, func(st *state) error {
		p, ok := st.projects[id]
		if !ok || !slices.Contains(p.LikedBy, uid) {
			return nil
		}
		p.LikedBy = slices.DeleteFunc(p.LikedBy, func(liker string) bool { return liker == uid })
		p.Likes--
		removed = true
		return nil
	})
	return removed, err
}

func (r projectRepo) IncrementViews(ctx context.Context, id string) error {
	return r.s.view(ctx, func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return errs.NewNotFound("project")
		}
		p.Views++
		return nil
	})
}

func (r projectRepo) List(ctx context.Context, q database.ProjectQuery) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.s.view(ctx, func(st *state) error {
		var matched []*models.Project
		for _, p := range filterProjects(st, q) {
			if q.After != nil && !q.After.Precedes(p) {
				continue
			}
			matched = append(matched, p)
		}
		for _, p := range limited(matched, q.Limit) {
			projects = append(projects, copyProject(p))
		}
		return nil
	})
	return projects, err
}

func (r projectRepo) Count(ctx context.Context, q database.ProjectQuery) (int64, error) {
	var total int64
	err := r.s.view(ctx, func(st *state) error {
		total = int64(len(filterProjects(st, q)))
		return nil
	})
	return total, err
}

func (r projectRepo) SumLikes(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.s.view(ctx, func(st *state) error {
		for _, p := range st.projects {
			if p.UserID == userID {
				sum += p.Likes
			}
		}
		return nil
	})
	return sum, err
}

// filterProjects returns the matching projects ordered by createdAt desc, id desc
func filterProjects(st *state, q database.ProjectQuery) []*models.Project {
	var matched []*models.Project
	for _, p := range st.projects {
		if q.UserID != "" && p.UserID != q.UserID {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Tool != "" && p.Tool != q.Tool {
			continue
		}
		if q.PublishedOnly && !p.IsPublished {
			continue
		}
		if q.FeaturedOnly && !p.IsFeatured {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}
