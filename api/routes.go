package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public routes and, behind authenticate, the caller's routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.identify)

		r.Get("/stats", handlers.statsHandler.getPlatformStats())
		r.Get("/catalog", handlers.statsHandler.getCatalog())

		r.Get("/users/featured", handlers.userHandler.getFeaturedUsers())
		r.Get("/users/search", handlers.userHandler.searchUsers())
		r.Get("/users/handle/{handle}", handlers.userHandler.getUserByHandle())
		r.Get("/handles/{handle}/available", handlers.userHandler.handleAvailability())
		r.Get("/users/{uid}", handlers.userHandler.getUser())
		r.Get("/users/{uid}/counts", handlers.userHandler.getProjectCounts())
		r.Get("/users/{uid}/followers", handlers.followHandler.listFollowers())
		r.Get("/users/{uid}/following", handlers.followHandler.listFollowing())
		r.Get("/users/{uid}/projects", handlers.projectHandler.getProjectsByUser())

		r.Get("/projects", handlers.projectHandler.getLatestProjects())
		r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())
		r.Get("/projects/category/{category}", handlers.projectHandler.getProjectsByCategory())
		r.Get("/projects/tool/{tool}", handlers.projectHandler.getProjectsByTool())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/session", handlers.userHandler.syncSession())
			r.Patch("/me/profile", handlers.userHandler.updateProfile())
			r.Post("/me/profile/complete", handlers.userHandler.completeProfile())
			r.Put("/me/avatar", handlers.userHandler.uploadAvatar())
			r.Post("/users/{uid}/reconcile", handlers.userHandler.reconcileCounters())

			r.Post("/users/{uid}/follow", handlers.followHandler.follow())
			r.Delete("/users/{uid}/follow", handlers.followHandler.unfollow())
			r.Get("/users/{uid}/following-status", handlers.followHandler.followingStatus())

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Patch("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
			r.Post("/projects/{projectID}/like", handlers.projectHandler.likeProject())
			r.Delete("/projects/{projectID}/like", handlers.projectHandler.unlikeProject())
			r.Put("/projects/{projectID}/images/{slot}", handlers.projectHandler.uploadImage())
		})
	})
}
