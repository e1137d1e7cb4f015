package api

import (
	"github.com/rpupo63/wholspace-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(service *services.Service) *routeHandlers {
	return &routeHandlers{
		userHandler:    newUserHandler(service),
		followHandler:  newFollowHandler(service),
		projectHandler: newProjectHandler(service),
		statsHandler:   newStatsHandler(service),
	}
}
