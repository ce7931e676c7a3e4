package repository

import (
	"database/sql"
	"fmt"
	"time"

	"musichub/model"

	"github.com/google/uuid"
)

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	CreatePlaylist(userID int64, name string) (*model.Playlist, error)
	GetPlaylistByID(id string) (*model.Playlist, error)
	GetPlaylistsByUserID(userID int64) ([]*model.Playlist, error)
	GetPlaylistSongIDs(playlistID string) ([]int64, error)
	AddSongToPlaylist(playlistID string, songID int64) error
	RemoveSongFromPlaylist(playlistID string, songID int64) error
	DeletePlaylist(id string) error
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist creates an empty named playlist for the user.
// Playlist names are not unique; duplicates are allowed.
func (r *mysqlPlaylistRepository) CreatePlaylist(userID int64, name string) (*model.Playlist, error) {
	playlist := &model.Playlist{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
	}

	query := "INSERT INTO playlists (id, user_id, name) VALUES (?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare create playlist statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(playlist.ID, playlist.UserID, playlist.Name); err != nil {
		return nil, fmt.Errorf("failed to execute create playlist statement: %w", err)
	}

	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	return playlist, nil
}

// GetPlaylistByID retrieves a playlist by its ID. Returns (nil, nil) when not found.
func (r *mysqlPlaylistRepository) GetPlaylistByID(id string) (*model.Playlist, error) {
	query := "SELECT id, user_id, name, created_at, updated_at FROM playlists WHERE id = ?"
	row := r.db.QueryRow(query, id)
	playlist := &model.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist row for ID %s: %w", id, err)
	}
	return playlist, nil
}

// GetPlaylistsByUserID retrieves all playlists owned by the user, oldest first.
func (r *mysqlPlaylistRepository) GetPlaylistsByUserID(userID int64) ([]*model.Playlist, error) {
	query := "SELECT id, user_id, name, created_at, updated_at FROM playlists WHERE user_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist := &model.Playlist{}
		err := rows.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.CreatedAt, &playlist.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist in GetPlaylistsByUserID: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistsByUserID: %w", err)
	}

	return playlists, nil
}

// GetPlaylistSongIDs returns the playlist's song IDs in insertion order.
func (r *mysqlPlaylistRepository) GetPlaylistSongIDs(playlistID string) ([]int64, error) {
	query := "SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC"
	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for playlist %s: %w", playlistID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song ID in GetPlaylistSongIDs: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistSongIDs: %w", err)
	}

	return ids, nil
}

// AddSongToPlaylist appends a song at the end of the playlist.
// Adding a song that is already present is a no-op.
func (r *mysqlPlaylistRepository) AddSongToPlaylist(playlistID string, songID int64) error {
	// 取当前最大position并加1，重复添加时保持原有位置不变
	query := `INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position)
	           SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare add song statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(playlistID, songID, playlistID); err != nil {
		return fmt.Errorf("failed to add song %d to playlist %s: %w", songID, playlistID, err)
	}
	return nil
}

// RemoveSongFromPlaylist removes a song from the playlist.
func (r *mysqlPlaylistRepository) RemoveSongFromPlaylist(playlistID string, songID int64) error {
	query := "DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare remove song statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(playlistID, songID); err != nil {
		return fmt.Errorf("failed to remove song %d from playlist %s: %w", songID, playlistID, err)
	}
	return nil
}

// DeletePlaylist removes a playlist and its song references.
func (r *mysqlPlaylistRepository) DeletePlaylist(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete playlist transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete songs for playlist %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}

	return tx.Commit()
}
