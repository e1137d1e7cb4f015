package api

import "github.com/rpupo63/wholspace-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	userHandler    userHandler
	followHandler  followHandler
	projectHandler projectHandler
	statsHandler   statsHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"handle"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// ProjectResponse is a project as seen by the caller
type ProjectResponse struct {
	*models.Project
	LikedByMe bool `json:"likedByMe"`
}

type FollowStatusResponse struct {
	Following bool `json:"following"`
}

type LikeStatusResponse struct {
	Liked bool `json:"liked"`
}

type HandleAvailabilityResponse struct {
	Handle    string `json:"handle"`
	Available bool   `json:"available"`
}

type CatalogResponse struct {
	Tools      []string `json:"tools"`
	Categories []string `json:"categories"`
}
