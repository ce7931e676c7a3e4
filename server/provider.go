package server

import (
	"context"
	"fmt"

	"musichub/model"
	"musichub/repository"
)

// repoProvider adapts the repositories to the playback core's
// CatalogProvider, bound to one authenticated account.
type repoProvider struct {
	userID       int64
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	likeRepo     repository.LikeRepository
}

func newRepoProvider(userID int64, h *APIHandler) *repoProvider {
	return &repoProvider{
		userID:       userID,
		songRepo:     h.songRepo,
		playlistRepo: h.playlistRepo,
		likeRepo:     h.likeRepo,
	}
}

func (p *repoProvider) FetchCatalog(ctx context.Context) ([]*model.Song, error) {
	return p.songRepo.ListSongs()
}

func (p *repoProvider) FetchLiked(ctx context.Context) ([]*model.Song, error) {
	ids, err := p.likeRepo.GetLikedSongIDs(p.userID)
	if err != nil {
		return nil, err
	}
	return p.songRepo.GetSongsByIDs(ids)
}

func (p *repoProvider) FetchPlaylists(ctx context.Context) ([]*model.PlaylistWithSongs, error) {
	playlists, err := p.playlistRepo.GetPlaylistsByUserID(p.userID)
	if err != nil {
		return nil, err
	}

	out := make([]*model.PlaylistWithSongs, 0, len(playlists))
	for _, pl := range playlists {
		ids, err := p.playlistRepo.GetPlaylistSongIDs(pl.ID)
		if err != nil {
			return nil, err
		}
		songs, err := p.songRepo.GetSongsByIDs(ids)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.PlaylistWithSongs{Playlist: *pl, Songs: songs})
	}
	return out, nil
}

func (p *repoProvider) ToggleLike(ctx context.Context, songID int64) (bool, error) {
	return p.likeRepo.ToggleLike(p.userID, songID)
}

func (p *repoProvider) CreatePlaylist(ctx context.Context, name string) (*model.Playlist, error) {
	return p.playlistRepo.CreatePlaylist(p.userID, name)
}

func (p *repoProvider) AddSong(ctx context.Context, playlistID string, songID int64) error {
	if err := p.requireOwnership(playlistID); err != nil {
		return err
	}
	return p.playlistRepo.AddSongToPlaylist(playlistID, songID)
}

func (p *repoProvider) RemoveSong(ctx context.Context, playlistID string, songID int64) error {
	if err := p.requireOwnership(playlistID); err != nil {
		return err
	}
	return p.playlistRepo.RemoveSongFromPlaylist(playlistID, songID)
}

func (p *repoProvider) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := p.requireOwnership(playlistID); err != nil {
		return err
	}
	return p.playlistRepo.DeletePlaylist(playlistID)
}

func (p *repoProvider) requireOwnership(playlistID string) error {
	playlist, err := p.playlistRepo.GetPlaylistByID(playlistID)
	if err != nil {
		return err
	}
	if playlist == nil {
		return fmt.Errorf("playlist %s not found", playlistID)
	}
	if playlist.UserID != p.userID {
		return fmt.Errorf("playlist %s belongs to another account", playlistID)
	}
	return nil
}
