package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"musichub/logger"
	"musichub/model"
	"musichub/storage"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// UploadSongHandler handles a new catalog entry from the admin console.
// Expected multipart form fields:
// - audio: the audio file (required, audio/* content type)
// - coverImage: cover art (optional, image/* content type)
// - title: song title (required)
// - artist: song artist (required)
// - movie: movie/album tag (optional)
// Both files go to the media CDN before the catalog row is written; on
// a database failure the uploaded objects are removed again.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 超出上传限制时 ParseMultipartForm 会直接报错
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse upload form (file may exceed the size limit)")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	artist := strings.TrimSpace(r.FormValue("artist"))
	movie := strings.TrimSpace(r.FormValue("movie"))
	if title == "" || artist == "" {
		writeError(w, http.StatusBadRequest, "Title and artist are required")
		return
	}

	audioFile, audioHeader, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'audio' in form")
		return
	}
	defer audioFile.Close()

	audioType := audioHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(audioType, "audio/") {
		writeError(w, http.StatusBadRequest, "Only audio files are accepted for 'audio'")
		return
	}

	audioObject := storage.ObjectName("audio", audioHeader.Filename)
	fileURL, err := h.media.Upload(ctx, audioObject, audioFile, audioHeader.Size, audioType)
	if err != nil {
		logger.Error("Failed to upload audio", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store audio file")
		return
	}

	var coverURL, coverObject string
	coverFile, coverHeader, err := r.FormFile("coverImage")
	if err == nil {
		defer coverFile.Close()

		coverType := coverHeader.Header.Get("Content-Type")
		if !strings.HasPrefix(coverType, "image/") {
			h.removeObject(ctx, audioObject)
			writeError(w, http.StatusBadRequest, "Only image files are accepted for 'coverImage'")
			return
		}

		coverObject = storage.ObjectName("covers", coverHeader.Filename)
		coverURL, err = h.media.Upload(ctx, coverObject, coverFile, coverHeader.Size, coverType)
		if err != nil {
			logger.Error("Failed to upload cover", logger.ErrorField(err))
			h.removeObject(ctx, audioObject)
			writeError(w, http.StatusInternalServerError, "Failed to store cover image")
			return
		}
	} else if err != http.ErrMissingFile {
		h.removeObject(ctx, audioObject)
		writeError(w, http.StatusBadRequest, "Error processing cover file")
		return
	}

	song := &model.Song{
		Title:    title,
		Artist:   artist,
		Movie:    movie,
		FileURL:  fileURL,
		CoverURL: coverURL,
	}

	songID, err := h.songRepo.CreateSong(song)
	if err != nil {
		logger.Error("Failed to create song", logger.ErrorField(err))
		h.removeObject(ctx, audioObject)
		if coverObject != "" {
			h.removeObject(ctx, coverObject)
		}
		writeError(w, http.StatusInternalServerError, "Failed to create song")
		return
	}
	song.ID = songID

	if err := h.catalogCache.Invalidate(ctx); err != nil {
		logger.Warn("Catalog cache invalidation failed", logger.ErrorField(err))
	}

	logger.Info("Song uploaded",
		logger.Int64("songId", songID),
		logger.String("title", title),
		logger.String("artist", artist),
	)
	writeJSON(w, http.StatusCreated, song)
}

// ListAllSongsHandler returns the full catalog for the admin console,
// bypassing the public cache.
func (h *APIHandler) ListAllSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songRepo.ListSongs()
	if err != nil {
		logger.Error("Failed to list songs", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve songs")
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// DeleteSongHandler removes a song from the catalog together with its
// stored media. Likes and playlist references to the song are removed
// as part of the catalog delete.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	songID, err := strconv.ParseInt(mux.Vars(r)["songId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		logger.Error("Failed to get song", logger.Int64("songId", songID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}
	if song == nil {
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.songRepo.DeleteSong(songID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Song not found")
			return
		}
		logger.Error("Failed to delete song", logger.Int64("songId", songID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}

	// 媒体对象删除失败只记日志，数据库记录已经删除
	if object := h.media.ObjectNameFromURL(song.FileURL); object != "" {
		h.removeObject(ctx, object)
	}
	if object := h.media.ObjectNameFromURL(song.CoverURL); object != "" {
		h.removeObject(ctx, object)
	}

	if err := h.catalogCache.Invalidate(ctx); err != nil {
		logger.Warn("Catalog cache invalidation failed", logger.ErrorField(err))
	}

	logger.Info("Song deleted", logger.Int64("songId", songID))
	w.WriteHeader(http.StatusNoContent)
}

// ListUsersHandler returns all registered accounts, newest first.
func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.ListUsers()
	if err != nil {
		logger.Error("Failed to list users", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUserHandler removes an account together with its likes,
// playlists and saved player state. Admins cannot delete themselves.
func (h *APIHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, err := GetUserIDFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if userID == callerID {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.userRepo.DeleteUser(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("Failed to delete user", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	if err := h.playerCache.Clear(ctx, userID); err != nil {
		logger.Warn("Failed to clear player state",
			logger.Int64("userId", userID),
			logger.ErrorField(err),
		)
	}

	logger.Info("User deleted", logger.Int64("userId", userID))
	w.WriteHeader(http.StatusNoContent)
}

// StorageStatsHandler reports object counts and sizes on the media CDN
// for the admin dashboard.
func (h *APIHandler) StorageStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	type prefixStats struct {
		Count     int64 `json:"count"`
		TotalSize int64 `json:"totalSize"`
	}
	stats := make(map[string]prefixStats, 2)

	for _, prefix := range []string{"audio", "covers"} {
		count, size, err := h.media.Stats(ctx, prefix+"/")
		if err != nil {
			logger.Error("Failed to collect storage stats",
				logger.String("prefix", prefix),
				logger.ErrorField(err),
			)
			writeError(w, http.StatusInternalServerError, "Failed to collect storage stats")
			return
		}
		stats[prefix] = prefixStats{Count: count, TotalSize: size}
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) removeObject(ctx context.Context, objectName string) {
	if err := h.media.Remove(ctx, objectName); err != nil {
		logger.Warn("Failed to remove media object",
			logger.String("object", objectName),
			logger.ErrorField(err),
		)
	}
}
