package repository

import (
	"database/sql"
	"fmt"
)

// LikeRepository defines the interface for liked-song operations.
type LikeRepository interface {
	// ToggleLike flips membership of the song in the user's liked-set and
	// reports the resulting state (true when the song is now liked).
	ToggleLike(userID, songID int64) (bool, error)
	GetLikedSongIDs(userID int64) ([]int64, error)
	IsLiked(userID, songID int64) (bool, error)
}

// mysqlLikeRepository implements LikeRepository for MySQL.
type mysqlLikeRepository struct {
	db *sql.DB
}

// NewMySQLLikeRepository creates a new mysqlLikeRepository.
func NewMySQLLikeRepository(db *sql.DB) LikeRepository {
	return &mysqlLikeRepository{db: db}
}

// ToggleLike adds the song to the liked-set if absent, removes it if present.
func (r *mysqlLikeRepository) ToggleLike(userID, songID int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin toggle like transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM liked_songs WHERE user_id = ? AND song_id = ?", userID, songID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like for user %d song %d: %w", userID, songID, err)
	}

	if exists > 0 {
		if _, err := tx.Exec("DELETE FROM liked_songs WHERE user_id = ? AND song_id = ?", userID, songID); err != nil {
			return false, fmt.Errorf("failed to remove like for user %d song %d: %w", userID, songID, err)
		}
		return false, tx.Commit()
	}

	if _, err := tx.Exec("INSERT INTO liked_songs (user_id, song_id) VALUES (?, ?)", userID, songID); err != nil {
		return false, fmt.Errorf("failed to add like for user %d song %d: %w", userID, songID, err)
	}
	return true, tx.Commit()
}

// GetLikedSongIDs returns the user's liked song IDs in insertion order.
func (r *mysqlLikeRepository) GetLikedSongIDs(userID int64) ([]int64, error) {
	query := "SELECT song_id FROM liked_songs WHERE user_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes for user %d: %w", userID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song ID in GetLikedSongIDs: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetLikedSongIDs: %w", err)
	}

	return ids, nil
}

// IsLiked reports whether the song is in the user's liked-set.
func (r *mysqlLikeRepository) IsLiked(userID, songID int64) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM liked_songs WHERE user_id = ? AND song_id = ?", userID, songID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check like for user %d song %d: %w", userID, songID, err)
	}
	return count > 0, nil
}
