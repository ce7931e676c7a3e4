package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"musichub/logger"
	"musichub/model"

	"github.com/gorilla/mux"
)

// GetLikedSongsHandler returns the caller's liked songs in the order
// they were liked.
func (h *APIHandler) GetLikedSongsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ids, err := h.likeRepo.GetLikedSongIDs(userID)
	if err != nil {
		logger.Error("Failed to get liked song IDs",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve liked songs")
		return
	}

	songs, err := h.songRepo.GetSongsByIDs(ids)
	if err != nil {
		logger.Error("Failed to resolve liked songs",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve liked songs")
		return
	}

	writeJSON(w, http.StatusOK, songs)
}

// ToggleLikeHandler flips the liked state of a song for the caller and
// returns the resulting state. Toggling twice is a no-op pair.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	songID, err := strconv.ParseInt(vars["songId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		logger.Error("Failed to get song", logger.Int64("songId", songID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}
	if song == nil {
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	liked, err := h.likeRepo.ToggleLike(userID, songID)
	if err != nil {
		logger.Error("Failed to toggle like",
			logger.Int64("userId", userID),
			logger.Int64("songId", songID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// GetPlaylistsHandler returns the caller's playlists with their songs
// resolved in playlist order.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByUserID(userID)
	if err != nil {
		logger.Error("Failed to get playlists",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve playlists")
		return
	}

	out := make([]*model.PlaylistWithSongs, 0, len(playlists))
	for _, p := range playlists {
		ids, err := h.playlistRepo.GetPlaylistSongIDs(p.ID)
		if err != nil {
			logger.Error("Failed to get playlist songs",
				logger.String("playlistId", p.ID),
				logger.ErrorField(err),
			)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve playlists")
			return
		}
		songs, err := h.songRepo.GetSongsByIDs(ids)
		if err != nil {
			logger.Error("Failed to resolve playlist songs",
				logger.String("playlistId", p.ID),
				logger.ErrorField(err),
			)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve playlists")
			return
		}
		out = append(out, &model.PlaylistWithSongs{Playlist: *p, Songs: songs})
	}

	writeJSON(w, http.StatusOK, out)
}

// CreatePlaylistHandler creates a named playlist for the caller.
// Duplicate names are allowed; each playlist gets its own ID.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist, err := h.playlistRepo.CreatePlaylist(userID, req.Name)
	if err != nil {
		logger.Error("Failed to create playlist",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}

	logger.Info("Playlist created",
		logger.Int64("userId", userID),
		logger.String("playlistId", playlist.ID),
	)
	writeJSON(w, http.StatusCreated, &model.PlaylistWithSongs{Playlist: *playlist, Songs: []*model.Song{}})
}

// DeletePlaylistHandler removes one of the caller's playlists.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlist, ok := h.ownedPlaylist(w, r, userID)
	if !ok {
		return
	}

	if err := h.playlistRepo.DeletePlaylist(playlist.ID); err != nil {
		logger.Error("Failed to delete playlist",
			logger.String("playlistId", playlist.ID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSongToPlaylistHandler appends a song to one of the caller's
// playlists. Adding a song that is already present is a no-op.
func (h *APIHandler) AddSongToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlist, ok := h.ownedPlaylist(w, r, userID)
	if !ok {
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["songId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		logger.Error("Failed to get song", logger.Int64("songId", songID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add song to playlist")
		return
	}
	if song == nil {
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.playlistRepo.AddSongToPlaylist(playlist.ID, songID); err != nil {
		logger.Error("Failed to add song to playlist",
			logger.String("playlistId", playlist.ID),
			logger.Int64("songId", songID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to add song to playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Song added to playlist"})
}

// RemoveSongFromPlaylistHandler removes a song from one of the caller's
// playlists.
func (h *APIHandler) RemoveSongFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlist, ok := h.ownedPlaylist(w, r, userID)
	if !ok {
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["songId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	if err := h.playlistRepo.RemoveSongFromPlaylist(playlist.ID, songID); err != nil {
		logger.Error("Failed to remove song from playlist",
			logger.String("playlistId", playlist.ID),
			logger.Int64("songId", songID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to remove song from playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Song removed from playlist"})
}

// ownedPlaylist loads the playlist from the route and verifies the
// caller owns it, writing the error response itself on failure.
func (h *APIHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, userID int64) (*model.Playlist, bool) {
	playlistID := mux.Vars(r)["playlistId"]
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "Playlist ID is required")
		return nil, false
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(playlistID)
	if err != nil {
		logger.Error("Failed to get playlist",
			logger.String("playlistId", playlistID),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to get playlist")
		return nil, false
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}
	if playlist.UserID != userID {
		writeError(w, http.StatusForbidden, "Playlist belongs to another account")
		return nil, false
	}
	return playlist, true
}
