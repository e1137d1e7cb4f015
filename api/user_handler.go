package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.Service
}

func newUserHandler(service *services.Service) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// syncSession creates or refreshes the caller's profile
// @Summary Establish session
// @Description Creates the caller's profile on first sign-in and stamps the login otherwise
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing, invalid or unverified identity"
// @Router /session [post]
func (h userHandler) syncSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		user, err := h.service.SyncUser(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// getUser retrieves a profile by uid
// @Summary Get user
// @Tags Users
// @Produce json
// @Param uid path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not Found - User not found"
// @Router /users/{uid} [get]
func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// getUserByHandle retrieves a profile by handle
// @Summary Get user by handle
// @Tags Users
// @Produce json
// @Param handle path string true "Handle"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not Found - User not found"
// @Router /users/handle/{handle} [get]
func (h userHandler) getUserByHandle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.GetUserByHandle(r.Context(), chi.URLParam(r, "handle"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h userHandler) handleAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := models.NormalizeHandle(chi.URLParam(r, "handle"))

		available, err := h.service.IsHandleAvailable(r.Context(), handle)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, HandleAvailabilityResponse{Handle: handle, Available: available})
	}
}

// getFeaturedUsers lists featured builders
// @Summary Featured builders
// @Tags Users
// @Produce json
// @Param limit query int false "Maximum number of users" default(6)
// @Success 200 {array} models.User
// @Router /users/featured [get]
func (h userHandler) getFeaturedUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		users, err := h.service.GetFeaturedUsers(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, nonNil(users))
	}
}

// searchUsers matches builders by name, handle or bio
// @Summary Search builders
// @Tags Users
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Maximum number of users" default(10)
// @Success 200 {array} models.User
// @Router /users/search [get]
func (h userHandler) searchUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		users, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, users)
	}
}

// updateProfile merges the body into the caller's profile
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Param profile body models.UserPatch true "Profile fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid handle or payload"
// @Failure 409 {object} ErrorResponse "Conflict - Handle already taken"
// @Router /me/profile [patch]
func (h userHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.UserPatch
		if err := decodeJSON(w, r, "profile", &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), ctxGetUserID(r.Context()), patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// completeProfile finishes onboarding
// @Summary Complete profile
// @Tags Users
// @Accept json
// @Produce json
// @Param profile body models.UserPatch true "Onboarding fields"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Display name and handle are required"
// @Failure 409 {object} ErrorResponse "Conflict - Handle already taken"
// @Router /me/profile/complete [post]
func (h userHandler) completeProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.UserPatch
		if err := decodeJSON(w, r, "profile", &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.service.CompleteProfile(r.Context(), ctxGetUserID(r.Context()), patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// uploadAvatar replaces the caller's avatar with the raw image body
// @Summary Upload avatar
// @Tags Users
// @Accept image/png,image/jpeg,image/webp,image/gif
// @Produce json
// @Param filename query string false "Original file name"
// @Success 200 {object} models.User
// @Failure 413 {object} ErrorResponse "Image larger than 5MB"
// @Failure 415 {object} ErrorResponse "Not an image"
// @Router /me/avatar [put]
func (h userHandler) uploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := readUpload(w, r, services.MaxAvatarSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.service.UploadAvatar(r.Context(), ctxGetUserID(r.Context()), upload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h userHandler) getProjectCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.service.GetUserProjectCounts(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, counts)
	}
}

// reconcileCounters recomputes the caller's counters
// @Summary Reconcile counters
// @Tags Users
// @Produce json
// @Param uid path string true "User ID, must be the caller"
// @Success 200 {object} models.CounterReconciliation
// @Failure 403 {object} ErrorResponse "Forbidden - Not the caller"
// @Router /users/{uid}/reconcile [post]
func (h userHandler) reconcileCounters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")
		if uid != ctxGetUserID(r.Context()) {
			h.responder.WriteError(w, errs.NewUnauthorized("Counters can only be reconciled by their owner"))
			return
		}

		result, err := h.service.ReconcileUserCounters(r.Context(), uid)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
