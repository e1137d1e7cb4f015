package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
)

type statsHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.Service
}

func newStatsHandler(service *services.Service) statsHandler {
	logger := log.With().Str("handlerName", "statsHandler").Logger()

	return statsHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// getPlatformStats counts public builders and projects
// @Summary Platform stats
// @Tags Stats
// @Produce json
// @Success 200 {object} models.PlatformStats
// @Failure 503 {object} ErrorResponse "Store unavailable"
// @Router /stats [get]
func (h statsHandler) getPlatformStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.GetPlatformStats(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

func (h statsHandler) getCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, CatalogResponse{Tools: models.Tools, Categories: models.Categories})
	}
}
