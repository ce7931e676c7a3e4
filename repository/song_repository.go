package repository

import (
	"errors"
	"fmt"

	"musichub/model"

	"gorm.io/gorm"
)

// SongRepository defines the interface for catalog data operations.
type SongRepository interface {
	CreateSong(song *model.Song) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	GetSongsByIDs(ids []int64) ([]*model.Song, error)
	ListSongs() ([]*model.Song, error)
	DeleteSong(id int64) error
}

// gormSongRepository implements SongRepository on GORM.
type gormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository creates a new gormSongRepository.
func NewGormSongRepository(db *gorm.DB) SongRepository {
	return &gormSongRepository{db: db}
}

// CreateSong inserts a new catalog entry.
func (r *gormSongRepository) CreateSong(song *model.Song) (int64, error) {
	if err := r.db.Create(song).Error; err != nil {
		return 0, fmt.Errorf("failed to create song: %w", err)
	}
	return song.ID, nil
}

// GetSongByID retrieves a song by its ID. Returns (nil, nil) when not found.
func (r *gormSongRepository) GetSongByID(id int64) (*model.Song, error) {
	var song model.Song
	err := r.db.First(&song, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get song %d: %w", id, err)
	}
	return &song, nil
}

// GetSongsByIDs retrieves songs for the given IDs, preserving the input order.
// IDs with no matching row are skipped.
func (r *gormSongRepository) GetSongsByIDs(ids []int64) ([]*model.Song, error) {
	if len(ids) == 0 {
		return []*model.Song{}, nil
	}

	var rows []*model.Song
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get songs by IDs: %w", err)
	}

	byID := make(map[int64]*model.Song, len(rows))
	for _, s := range rows {
		byID[s.ID] = s
	}

	songs := make([]*model.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			songs = append(songs, s)
		}
	}
	return songs, nil
}

// ListSongs returns the full catalog, newest first.
func (r *gormSongRepository) ListSongs() ([]*model.Song, error) {
	songs := make([]*model.Song, 0)
	if err := r.db.Order("created_at DESC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// DeleteSong removes a song and its references from playlists and likes.
func (r *gormSongRepository) DeleteSong(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Song{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete song %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Exec("DELETE FROM playlist_songs WHERE song_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete playlist references for song %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM liked_songs WHERE song_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete like references for song %d: %w", id, err)
		}
		return nil
	})
}
