package models

import (
	"time"

	"gorm.io/datatypes"
)

// SocialLinks holds a builder's external profile links
type SocialLinks struct {
	Twitter  string `json:"twitter"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
	YouTube  string `json:"youtube"`
	Discord  string `json:"discord"`
}

// User is a builder profile keyed by the identity provider's uid.
//
// The counter fields are denormalized aggregates of the follows and projects tables
// and are only written through UserRepository.AdjustCounters / SetCounters.
type User struct {
	UID         string                           `json:"uid" gorm:"column:uid;type:text;primaryKey;not null"`
	Email       string                           `json:"email" gorm:"column:email;type:text;not null;default:''"`
	DisplayName string                           `json:"displayName" gorm:"column:display_name;type:text;not null;default:'';index:idx_users_display_name"`
	PhotoURL    string                           `json:"photoURL" gorm:"column:photo_url;type:text;not null;default:''"`
	Handle      string                           `json:"handle" gorm:"column:handle;type:text;not null;default:'';index:idx_users_handle"`
	Bio         string                           `json:"bio" gorm:"column:bio;type:text;not null;default:''"`
	Tagline     string                           `json:"tagline" gorm:"column:tagline;type:text;not null;default:''"`
	Website     string                           `json:"website" gorm:"column:website;type:text;not null;default:''"`
	Tools       datatypes.JSONSlice[string]      `json:"tools" gorm:"column:tools"`
	SocialLinks datatypes.JSONType[SocialLinks] `json:"socialLinks" gorm:"column:social_links"`

	ProjectCount   int64 `json:"projectCount" gorm:"column:project_count;not null;default:0;index:idx_users_project_count"`
	FollowerCount  int64 `json:"followerCount" gorm:"column:follower_count;not null;default:0"`
	FollowingCount int64 `json:"followingCount" gorm:"column:following_count;not null;default:0"`
	TotalLikes     int64 `json:"totalLikes" gorm:"column:total_likes;not null;default:0"`

	IsFeatured        bool `json:"isFeatured" gorm:"column:is_featured;not null;default:false;index:idx_users_featured"`
	IsProfileComplete bool `json:"isProfileComplete" gorm:"column:is_profile_complete;not null;default:false;index:idx_users_profile_complete"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"column:updated_at;not null"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" gorm:"column:last_login_at"`
}

// Counters returns the user's denormalized counters
func (u *User) Counters() Counters {
	return Counters{
		ProjectCount:   u.ProjectCount,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		TotalLikes:     u.TotalLikes,
	}
}

// Counters is either a set of absolute counter values or a delta applied to them.
type Counters struct {
	ProjectCount   int64 `json:"projectCount"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
	TotalLikes     int64 `json:"totalLikes"`
}

// IsZero reports whether no counter is touched
func (c Counters) IsZero() bool {
	return c == Counters{}
}

// Add applies a delta to c
func (c Counters) Add(delta Counters) Counters {
	return Counters{
		ProjectCount:   c.ProjectCount + delta.ProjectCount,
		FollowerCount:  c.FollowerCount + delta.FollowerCount,
		FollowingCount: c.FollowingCount + delta.FollowingCount,
		TotalLikes:     c.TotalLikes + delta.TotalLikes,
	}
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Email             *string      `json:"email,omitempty"`
	DisplayName       *string      `json:"displayName,omitempty"`
	PhotoURL          *string      `json:"photoURL,omitempty"`
	Handle            *string      `json:"handle,omitempty"`
	Bio               *string      `json:"bio,omitempty"`
	Tagline           *string      `json:"tagline,omitempty"`
	Website           *string      `json:"website,omitempty"`
	Tools             *[]string    `json:"tools,omitempty"`
	SocialLinks       *SocialLinks `json:"socialLinks,omitempty"`
	IsFeatured        *bool        `json:"isFeatured,omitempty"`
	IsProfileComplete *bool        `json:"isProfileComplete,omitempty"`
}

// IsEmpty reports whether the patch sets no field
func (p UserPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns maps the set fields to their column names
func (p UserPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.DisplayName != nil {
		cols["display_name"] = *p.DisplayName
	}
	if p.PhotoURL != nil {
		cols["photo_url"] = *p.PhotoURL
	}
	if p.Handle != nil {
		cols["handle"] = *p.Handle
	}
	if p.Bio != nil {
		cols["bio"] = *p.Bio
	}
	if p.Tagline != nil {
		cols["tagline"] = *p.Tagline
	}
	if p.Website != nil {
		cols["website"] = *p.Website
	}
	if p.Tools != nil {
		cols["tools"] = datatypes.NewJSONSlice(*p.Tools)
	}
	if p.SocialLinks != nil {
		cols["social_links"] = datatypes.NewJSONType(*p.SocialLinks)
	}
	if p.IsFeatured != nil {
		cols["is_featured"] = *p.IsFeatured
	}
	if p.IsProfileComplete != nil {
		cols["is_profile_complete"] = *p.IsProfileComplete
	}
	return cols
}

// Apply merges the set fields into u
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.Handle != nil {
		u.Handle = *p.Handle
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Tagline != nil {
		u.Tagline = *p.Tagline
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.Tools != nil {
		u.Tools = datatypes.NewJSONSlice(append([]string(nil), *p.Tools...))
	}
	if p.SocialLinks != nil {
		u.SocialLinks = datatypes.NewJSONType(*p.SocialLinks)
	}
	if p.IsFeatured != nil {
		u.IsFeatured = *p.IsFeatured
	}
	if p.IsProfileComplete != nil {
		u.IsProfileComplete = *p.IsProfileComplete
	}
}
