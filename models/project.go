package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// DefaultCategory is assigned to projects created without a category
const DefaultCategory = "Other"

// Project is a showcased build owned by a single user.
//
// Likes always equals len(LikedBy); both are only written through
// ProjectRepository.AddLiker / RemoveLiker.
type Project struct {
	ID               string                      `json:"id" gorm:"column:id;type:text;primaryKey;not null"`
	UserID           string                      `json:"userId" gorm:"column:user_id;type:text;not null;index:idx_projects_user_id"`
	Title            string                      `json:"title" gorm:"column:title;type:text;not null;default:''"`
	Description      string                      `json:"description" gorm:"column:description;type:text;not null;default:''"`
	ShortDescription string                      `json:"shortDescription" gorm:"column:short_description;type:text;not null;default:''"`
	DemoURL          string                      `json:"demoUrl" gorm:"column:demo_url;type:text;not null;default:''"`
	GithubURL        string                      `json:"githubUrl" gorm:"column:github_url;type:text;not null;default:''"`
	ThumbnailURL     string                      `json:"thumbnailUrl" gorm:"column:thumbnail_url;type:text;not null;default:''"`
	Screenshots      datatypes.JSONSlice[string] `json:"screenshots" gorm:"column:screenshots"`
	Tool             string                      `json:"tool" gorm:"column:tool;type:text;not null;default:'';index:idx_projects_tool"`
	Category         string                      `json:"category" gorm:"column:category;type:text;not null;default:'Other';index:idx_projects_category"`
	Tags             datatypes.JSONSlice[string] `json:"tags" gorm:"column:tags"`

	Likes   int64                       `json:"likes" gorm:"column:likes;not null;default:0"`
	Views   int64                       `json:"views" gorm:"column:views;not null;default:0"`
	LikedBy datatypes.JSONSlice[string] `json:"likedBy" gorm:"column:liked_by"`

	IsFeatured  bool `json:"isFeatured" gorm:"column:is_featured;not null;default:false"`
	IsPublished bool `json:"isPublished" gorm:"column:is_published;not null;default:true;index:idx_projects_published_created,priority:1"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime:false;default:now();index:idx_projects_published_created,priority:2,sort:desc"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;not null"`
}

// IsLikedBy reports whether uid is in the project's likedBy set
func (p *Project) IsLikedBy(uid string) bool {
	if p == nil || uid == "" {
		return false
	}
	return slices.Contains(p.LikedBy, uid)
}

// ProjectInput carries the owner-supplied fields of a new project
type ProjectInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	DemoURL          string   `json:"demoUrl"`
	GithubURL        string   `json:"githubUrl"`
	ThumbnailURL     string   `json:"thumbnailUrl"`
	Screenshots      []string `json:"screenshots"`
	Tool             string   `json:"tool"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	IsPublished      *bool    `json:"isPublished,omitempty"`
}

// ProjectPatch is a partial project update. Engagement and ownership fields are not patchable.
type ProjectPatch struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ShortDescription *string   `json:"shortDescription,omitempty"`
	DemoURL          *string   `json:"demoUrl,omitempty"`
	GithubURL        *string   `json:"githubUrl,omitempty"`
	ThumbnailURL     *string   `json:"thumbnailUrl,omitempty"`
	Screenshots      *[]string `json:"screenshots,omitempty"`
	Tool             *string   `json:"tool,omitempty"`
	Category         *string   `json:"category,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
	IsFeatured       *bool     `json:"isFeatured,omitempty"`
	IsPublished      *bool     `json:"isPublished,omitempty"`
}

// IsEmpty reports whether the patch sets no field
func (p ProjectPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns maps the set fields to their column names
func (p ProjectPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.ShortDescription != nil {
		cols["short_description"] = *p.ShortDescription
	}
	if p.DemoURL != nil {
		cols["demo_url"] = *p.DemoURL
	}
	if p.GithubURL != nil {
		cols["github_url"] = *p.GithubURL
	}
	if p.ThumbnailURL != nil {
		cols["thumbnail_url"] = *p.ThumbnailURL
	}
	if p.Screenshots != nil {
		cols["screenshots"] = datatypes.NewJSONSlice(*p.Screenshots)
	}
	if p.Tool != nil {
		cols["tool"] = *p.Tool
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Tags != nil {
		cols["tags"] = datatypes.NewJSONSlice(*p.Tags)
	}
	if p.IsFeatured != nil {
		cols["is_featured"] = *p.IsFeatured
	}
	if p.IsPublished != nil {
		cols["is_published"] = *p.IsPublished
	}
	return cols
}

// Apply merges the set fields into project
func (p ProjectPatch) Apply(project *Project) {
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.ShortDescription != nil {
		project.ShortDescription = *p.ShortDescription
	}
	if p.DemoURL != nil {
		project.DemoURL = *p.DemoURL
	}
	if p.GithubURL != nil {
		project.GithubURL = *p.GithubURL
	}
	if p.ThumbnailURL != nil {
		project.ThumbnailURL = *p.ThumbnailURL
	}
	if p.Screenshots != nil {
		project.Screenshots = datatypes.NewJSONSlice(slices.Clone(*p.Screenshots))
	}
	if p.Tool != nil {
		project.Tool = *p.Tool
	}
	if p.Category != nil {
		project.Category = *p.Category
	}
	if p.Tags != nil {
		project.Tags = datatypes.NewJSONSlice(slices.Clone(*p.Tags))
	}
	if p.IsFeatured != nil {
		project.IsFeatured = *p.IsFeatured
	}
	if p.IsPublished != nil {
		project.IsPublished = *p.IsPublished
	}
}

// ProjectCursor marks the last project of a page in createdAt desc, id desc order
type ProjectCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// CursorOf returns the cursor positioned right after p
func CursorOf(p *Project) ProjectCursor {
	return ProjectCursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// Precedes reports whether the cursor position sorts strictly before p, i.e. p belongs to a later page
func (c ProjectCursor) Precedes(p *Project) bool {
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID < c.ID
	}
	return p.CreatedAt.Before(c.CreatedAt)
}
