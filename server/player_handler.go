package server

import (
	"encoding/json"
	"net/http"

	"musichub/logger"
	"musichub/model"
)

// GetPlayerStateHandler returns the caller's saved playback snapshot,
// or 204 when none has been stored yet.
func (h *APIHandler) GetPlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	snapshot, err := h.playerCache.Load(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to load player state",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to load player state")
		return
	}
	if snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// SavePlayerStateHandler stores the caller's playback snapshot. The
// snapshot is best effort state; a failed save is logged and still
// answered with 204 so playback is never disrupted by it.
func (h *APIHandler) SavePlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var snapshot model.PlayerSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.playerCache.Save(r.Context(), userID, &snapshot); err != nil {
		logger.Warn("Failed to save player state",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
	}

	w.WriteHeader(http.StatusNoContent)
}
