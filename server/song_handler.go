package server

import (
	"net/http"

	"musichub/logger"
)

// GetSongsHandler returns the public song catalog, newest first. The
// catalog is served from Redis when warm and repopulated from MySQL on
// a miss. No authentication is required.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, err := h.catalogCache.Get(ctx); err != nil {
		logger.Warn("Catalog cache read failed", logger.ErrorField(err))
	} else if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	songs, err := h.songRepo.ListSongs()
	if err != nil {
		logger.Error("Failed to list songs", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve songs")
		return
	}

	if err := h.catalogCache.Set(ctx, songs); err != nil {
		logger.Warn("Catalog cache write failed", logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, songs)
}
