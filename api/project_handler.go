package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.Service
}

func newProjectHandler(service *services.Service) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

func (h projectHandler) view(r *http.Request, project *models.Project) ProjectResponse {
	return ProjectResponse{
		Project:   project,
		LikedByMe: services.HasUserLiked(project, ctxGetUserID(r.Context())),
	}
}

// getLatestProjects pages through published projects, newest first
// @Summary Latest projects
// @Tags Projects
// @Produce json
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} services.ProjectPage
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid cursor"
// @Router /projects [get]
func (h projectHandler) getLatestProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.service.GetLatestProjects(r.Context(), limit, r.URL.Query().Get("cursor"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.service.GetFeaturedProjects(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

func (h projectHandler) getProjectsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.service.GetProjectsByCategory(r.Context(), chi.URLParam(r, "category"), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

func (h projectHandler) getProjectsByTool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.service.GetProjectsByTool(r.Context(), chi.URLParam(r, "tool"), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getProjectsByUser lists a builder's projects. Owners also see their unpublished projects.
// @Summary Projects of a user
// @Tags Projects
// @Produce json
// @Param uid path string true "User ID"
// @Success 200 {array} models.Project
// @Router /users/{uid}/projects [get]
func (h projectHandler) getProjectsByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")
		includeUnpublished := uid == ctxGetUserID(r.Context())

		projects, err := h.service.GetProjectsByUser(r.Context(), uid, includeUnpublished)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getProject retrieves a project and records a view
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.service.RecordProjectView(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, h.view(r, project))
	}
}

// createProject creates a project owned by the caller
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.ProjectInput true "Project data"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Caller has no profile"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.ProjectInput
		if err := decodeJSON(w, r, "project", &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.CreateProject(r.Context(), ctxGetUserID(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, h.view(r, project))
	}
}

// updateProject merges the body into a project owned by the caller
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body models.ProjectPatch true "Fields to change"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner"
// @Router /projects/{projectID} [patch]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.ProjectPatch
		if err := decodeJSON(w, r, "project", &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "projectID"), ctxGetUserID(r.Context()), patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, h.view(r, project))
	}
}

// deleteProject deletes a project owned by the caller
// @Summary Delete project
// @Tags Projects
// @Param projectID path string true "Project ID" format(uuid)
// @Success 204 "Project deleted"
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner or no such project"
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "projectID"), ctxGetUserID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteNoContent(w)
	}
}

func (h projectHandler) likeProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.LikeProject(r.Context(), chi.URLParam(r, "projectID"), ctxGetUserID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, LikeStatusResponse{Liked: true})
	}
}

func (h projectHandler) unlikeProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.UnlikeProject(r.Context(), chi.URLParam(r, "projectID"), ctxGetUserID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, LikeStatusResponse{Liked: false})
	}
}

// uploadImage stores the raw image body in a slot of a project owned by the caller
// @Summary Upload project image
// @Tags Projects
// @Accept image/png,image/jpeg,image/webp,image/gif
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param slot path int true "0 for the thumbnail, n for screenshot n"
// @Param filename query string false "Original file name"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner"
// @Failure 413 {object} ErrorResponse "Image larger than 10MB"
// @Failure 415 {object} ErrorResponse "Not an image"
// @Router /projects/{projectID}/images/{slot} [put]
func (h projectHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestErrorWithField("invalid image slot", "slot", "Expected an integer"))
			return
		}

		upload, err := readUpload(w, r, services.MaxProjectImageSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.UploadProjectImage(r.Context(), ctxGetUserID(r.Context()), chi.URLParam(r, "projectID"), slot, upload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, h.view(r, project))
	}
}
