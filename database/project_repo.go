package database

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// Create inserts a new project
func (r *ProjectRepo) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID returns a project by its ID, reading from the primary
func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	return r.find(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

// FindForUpdate returns a project and row-locks it until the transaction ends
func (r *ProjectRepo) FindForUpdate(ctx context.Context, id string) (*models.Project, error) {
	return r.find(r.db.WithContext(ctx).Clauses(dbresolver.Write, clause.Locking{Strength: "UPDATE"}), id)
}

func (r *ProjectRepo) find(query *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := query.Where("id = ?", id).Take(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update merges the patch into an existing project and stamps updated_at
func (r *ProjectRepo) Update(ctx context.Context, id string, patch models.ProjectPatch) error {
	cols := patch.Columns()
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	return res.RowsAffected > 0, res.Error
}

// AddLiker appends uid to liked_by unless present. The membership test is part of the
// UPDATE so two concurrent likes by the same user cannot both count.
func (r *ProjectRepo) AddLiker(ctx context.Context, id, uid string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND NOT jsonb_exists(COALESCE(liked_by, '[]'::jsonb), ?)", id, uid).
		UpdateColumns(map[string]any{
			"likes":    gorm.Expr("likes + 1"),
			"liked_by": gorm.Expr("COALESCE(liked_by, '[]'::jsonb) || jsonb_build_array(?::text)", uid),
		})
	return res.RowsAffected > 0, res.Error
}

// RemoveLiker drops uid from liked_by if present
func (r *ProjectRepo) RemoveLiker(ctx context.Context, id, uid string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND jsonb_exists(COALESCE(liked_by, '[]'::jsonb), ?)", id, uid).
		UpdateColumns(map[string]any{
			"likes":    gorm.Expr("likes - 1"),
			"liked_by": gorm.Expr("liked_by - ?::text", uid),
		})
	return res.RowsAffected > 0, res.Error
}

// IncrementViews bumps the view counter
func (r *ProjectRepo) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}

// List returns projects matching q, newest first
func (r *ProjectRepo) List(ctx context.Context, q ProjectQuery) ([]*models.Project, error) {
	query := r.filter(r.db.WithContext(ctx), q)
	if q.After != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", q.After.CreatedAt, q.After.CreatedAt, q.After.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var projects []*models.Project
	err := query.Find(&projects).Error
	return projects, err
}

// Count returns the number of projects matching q, ignoring its cursor and limit
func (r *ProjectRepo) Count(ctx context.Context, q ProjectQuery) (int64, error) {
	var total int64
	err := r.filter(r.db.WithContext(ctx).Model(&models.Project{}), q).Count(&total).Error
	return total, err
}

// SumLikes totals likes across every project of a user
func (r *ProjectRepo) SumLikes(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.Project{}).
		Select("COALESCE(SUM(likes), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

func (r *ProjectRepo) filter(query *gorm.DB, q ProjectQuery) *gorm.DB {
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Tool != "" {
		query = query.Where("tool = ?", q.Tool)
	}
	if q.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	return query
}
