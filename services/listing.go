package services

import (
	"context"
	"strings"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/models"
)

// ProjectPage is one page of a cursor-paginated project listing
type ProjectPage struct {
	Items   []*models.Project `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"hasMore"`
}

// GetFeaturedUsers returns featured builders with complete profiles. When fewer than limit are
// featured, the builders with the most projects are returned instead.
func (s *Service) GetFeaturedUsers(ctx context.Context, limit int) ([]*models.User, error) {
	limit = orDefault(limit, defaultFeaturedUserLimit)

	users, err := s.store.Users().List(ctx, database.UserQuery{
		FeaturedOnly:        true,
		ProfileCompleteOnly: true,
		Limit:               limit,
	})
	if err != nil {
		return nil, wrap("list", "featured users", err)
	}
	if len(users) >= limit {
		return users, nil
	}

	users, err = s.store.Users().List(ctx, database.UserQuery{
		ProfileCompleteOnly: true,
		OrderBy:             database.UserOrderProjectCountDesc,
		Limit:               limit,
	})
	if err != nil {
		return nil, wrap("list", "top users", err)
	}
	return users, nil
}

// SearchUsers matches term against the display name, handle and bio of the first complete
// profiles in display name order
func (s *Service) SearchUsers(ctx context.Context, term string, limit int) ([]*models.User, error) {
	limit = orDefault(limit, defaultSearchLimit)
	term = strings.ToLower(strings.TrimSpace(term))

	candidates, err := s.store.Users().List(ctx, database.UserQuery{
		ProfileCompleteOnly: true,
		OrderBy:             database.UserOrderDisplayName,
		Limit:               searchCandidateLimit,
	})
	if err != nil {
		return nil, wrap("search", "users", err)
	}

	matches := make([]*models.User, 0, limit)
	for _, user := range candidates {
		if len(matches) == limit {
			break
		}
		if strings.Contains(strings.ToLower(user.DisplayName), term) ||
			strings.Contains(strings.ToLower(user.Handle), term) ||
			strings.Contains(strings.ToLower(user.Bio), term) {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

// GetLatestProjects pages through published projects, newest first. HasMore reports a full
// page, so the last page of an exact multiple is followed by one empty page.
func (s *Service) GetLatestProjects(ctx context.Context, pageSize int, cursor string) (ProjectPage, error) {
	pageSize = orDefault(pageSize, defaultPageSize)
	after, err := DecodeCursor(cursor)
	if err != nil {
		return ProjectPage{}, err
	}

	items, err := s.store.Projects().List(ctx, database.ProjectQuery{
		PublishedOnly: true,
		After:         after,
		Limit:         pageSize,
	})
	if err != nil {
		return ProjectPage{}, wrap("list", "projects", err)
	}

	page := ProjectPage{
		Items:   nonNil(items),
		HasMore: len(items) == pageSize,
	}
	if len(items) > 0 {
		page.Cursor = EncodeCursor(models.CursorOf(items[len(items)-1]))
	}
	return page, nil
}

func (s *Service) GetProjectsByCategory(ctx context.Context, category string, limit int) ([]*models.Project, error) {
	return s.listProjects(ctx, database.ProjectQuery{
		Category:      category,
		PublishedOnly: true,
		Limit:         orDefault(limit, defaultPageSize),
	})
}

func (s *Service) GetProjectsByTool(ctx context.Context, tool string, limit int) ([]*models.Project, error) {
	return s.listProjects(ctx, database.ProjectQuery{
		Tool:          tool,
		PublishedOnly: true,
		Limit:         orDefault(limit, defaultPageSize),
	})
}

func (s *Service) GetFeaturedProjects(ctx context.Context, limit int) ([]*models.Project, error) {
	return s.listProjects(ctx, database.ProjectQuery{
		FeaturedOnly:  true,
		PublishedOnly: true,
		Limit:         orDefault(limit, defaultFeaturedLimit),
	})
}

// GetProjectsByUser lists every project of userID, newest first
func (s *Service) GetProjectsByUser(ctx context.Context, userID string, includeUnpublished bool) ([]*models.Project, error) {
	return s.listProjects(ctx, database.ProjectQuery{
		UserID:        userID,
		PublishedOnly: !includeUnpublished,
	})
}

func (s *Service) listProjects(ctx context.Context, q database.ProjectQuery) ([]*models.Project, error) {
	projects, err := s.store.Projects().List(ctx, q)
	if err != nil {
		return nil, wrap("list", "projects", err)
	}
	return nonNil(projects), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
