package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/services"
)

type followHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.Service
}

func newFollowHandler(service *services.Service) followHandler {
	logger := log.With().Str("handlerName", "followHandler").Logger()

	return followHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// follow makes the caller follow uid
// @Summary Follow user
// @Tags Follows
// @Produce json
// @Param uid path string true "User to follow"
// @Success 200 {object} FollowStatusResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Cannot follow yourself"
// @Failure 404 {object} ErrorResponse "Not Found - User not found"
// @Router /users/{uid}/follow [post]
func (h followHandler) follow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.FollowUser(r.Context(), ctxGetUserID(r.Context()), chi.URLParam(r, "uid")); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, FollowStatusResponse{Following: true})
	}
}

// unfollow removes the caller's follow of uid
// @Summary Unfollow user
// @Tags Follows
// @Produce json
// @Param uid path string true "User to unfollow"
// @Success 200 {object} FollowStatusResponse
// @Router /users/{uid}/follow [delete]
func (h followHandler) unfollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.UnfollowUser(r.Context(), ctxGetUserID(r.Context()), chi.URLParam(r, "uid")); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, FollowStatusResponse{Following: false})
	}
}

func (h followHandler) followingStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		following, err := h.service.IsFollowing(r.Context(), ctxGetUserID(r.Context()), chi.URLParam(r, "uid"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, FollowStatusResponse{Following: following})
	}
}

// listFollowers lists the newest followers of uid
// @Summary Followers
// @Tags Follows
// @Produce json
// @Param uid path string true "User ID"
// @Param limit query int false "Maximum number of users" default(20)
// @Success 200 {array} models.User
// @Router /users/{uid}/followers [get]
func (h followHandler) listFollowers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		users, err := h.service.ListFollowers(r.Context(), chi.URLParam(r, "uid"), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, users)
	}
}

// listFollowing lists the users uid most recently followed
// @Summary Following
// @Tags Follows
// @Produce json
// @Param uid path string true "User ID"
// @Param limit query int false "Maximum number of users" default(20)
// @Success 200 {array} models.User
// @Router /users/{uid}/following [get]
func (h followHandler) listFollowing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		users, err := h.service.ListFollowing(r.Context(), chi.URLParam(r, "uid"), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, users)
	}
}
