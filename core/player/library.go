package player

import (
	"context"
	"fmt"

	"musichub/model"
)

// CatalogProvider supplies the track catalog and the per-identity library
// (liked tracks, playlists) and applies mutations to it. Implementations
// are bound to one authenticated identity.
type CatalogProvider interface {
	FetchCatalog(ctx context.Context) ([]*model.Song, error)
	FetchLiked(ctx context.Context) ([]*model.Song, error)
	FetchPlaylists(ctx context.Context) ([]*model.PlaylistWithSongs, error)

	ToggleLike(ctx context.Context, songID int64) (liked bool, err error)
	CreatePlaylist(ctx context.Context, name string) (*model.Playlist, error)
	AddSong(ctx context.Context, playlistID string, songID int64) error
	RemoveSong(ctx context.Context, playlistID string, songID int64) error
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// Library is the session's local view of the catalog, liked-set and
// playlists. Mutations follow a two-phase contract: apply locally first,
// then reconcile with the provider; on provider failure the local view is
// rolled back to the last known-good state.
type Library struct {
	provider CatalogProvider

	catalog   []*model.Song
	liked     []*model.Song
	playlists []*model.PlaylistWithSongs
}

// NewLibrary creates a library over the given provider.
func NewLibrary(provider CatalogProvider) *Library {
	return &Library{provider: provider}
}

// Refresh reloads catalog, liked-set and playlists from the provider.
func (l *Library) Refresh(ctx context.Context) error {
	catalog, err := l.provider.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	liked, err := l.provider.FetchLiked(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch liked songs: %w", err)
	}
	playlists, err := l.provider.FetchPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	l.catalog = catalog
	l.liked = liked
	l.playlists = playlists
	return nil
}

// Catalog returns the full track catalog.
func (l *Library) Catalog() []*model.Song {
	return l.catalog
}

// Liked returns the liked tracks in insertion order.
func (l *Library) Liked() []*model.Song {
	return l.liked
}

// Playlists returns the identity's playlists.
func (l *Library) Playlists() []*model.PlaylistWithSongs {
	return l.playlists
}

// PlaylistByID returns the playlist with the given ID, or nil.
func (l *Library) PlaylistByID(id string) *model.PlaylistWithSongs {
	for _, p := range l.playlists {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IsLiked reports membership of the song in the local liked-set view.
func (l *Library) IsLiked(songID int64) bool {
	for _, s := range l.liked {
		if s.ID == songID {
			return true
		}
	}
	return false
}

// ToggleLike flips the song's membership in the liked-set. The local view
// is updated immediately and rolled back if the provider call fails.
func (l *Library) ToggleLike(ctx context.Context, song *model.Song) error {
	if song == nil {
		return nil
	}

	prev := l.liked
	if l.IsLiked(song.ID) {
		next := make([]*model.Song, 0, len(prev))
		for _, s := range prev {
			if s.ID != song.ID {
				next = append(next, s)
			}
		}
		l.liked = next
	} else {
		l.liked = append(append([]*model.Song{}, prev...), song)
	}

	if _, err := l.provider.ToggleLike(ctx, song.ID); err != nil {
		l.liked = prev
		return fmt.Errorf("failed to toggle like: %w", err)
	}
	return nil
}

// CreatePlaylist creates a named playlist. Duplicate names are allowed.
// The playlist appears in the local view only after the provider confirms
// it, since the ID is provider-assigned.
func (l *Library) CreatePlaylist(ctx context.Context, name string) (*model.PlaylistWithSongs, error) {
	created, err := l.provider.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	p := &model.PlaylistWithSongs{Playlist: *created, Songs: []*model.Song{}}
	l.playlists = append(l.playlists, p)
	return p, nil
}

// AddToPlaylist appends the songs to the playlist, suppressing duplicates.
// Applied locally first; on any provider failure the playlist view is
// rolled back to its prior track list.
func (l *Library) AddToPlaylist(ctx context.Context, playlistID string, songs []*model.Song) error {
	p := l.PlaylistByID(playlistID)
	if p == nil {
		return fmt.Errorf("playlist %s not found", playlistID)
	}

	prev := p.Songs
	next := append([]*model.Song{}, prev...)
	added := make([]*model.Song, 0, len(songs))
	for _, s := range songs {
		if containsSong(next, s.ID) {
			continue
		}
		next = append(next, s)
		added = append(added, s)
	}
	p.Songs = next

	for _, s := range added {
		if err := l.provider.AddSong(ctx, playlistID, s.ID); err != nil {
			p.Songs = prev
			return fmt.Errorf("failed to add song %d to playlist: %w", s.ID, err)
		}
	}
	return nil
}

// RemoveFromPlaylist removes the song from the playlist, rolling back the
// local view on provider failure.
func (l *Library) RemoveFromPlaylist(ctx context.Context, playlistID string, songID int64) error {
	p := l.PlaylistByID(playlistID)
	if p == nil {
		return fmt.Errorf("playlist %s not found", playlistID)
	}

	prev := p.Songs
	next := make([]*model.Song, 0, len(prev))
	for _, s := range prev {
		if s.ID != songID {
			next = append(next, s)
		}
	}
	p.Songs = next

	if err := l.provider.RemoveSong(ctx, playlistID, songID); err != nil {
		p.Songs = prev
		return fmt.Errorf("failed to remove song %d from playlist: %w", songID, err)
	}
	return nil
}

// DeletePlaylist removes the playlist, rolling back on provider failure.
func (l *Library) DeletePlaylist(ctx context.Context, playlistID string) error {
	prev := l.playlists
	next := make([]*model.PlaylistWithSongs, 0, len(prev))
	for _, p := range prev {
		if p.ID != playlistID {
			next = append(next, p)
		}
	}
	l.playlists = next

	if err := l.provider.DeletePlaylist(ctx, playlistID); err != nil {
		l.playlists = prev
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

func containsSong(songs []*model.Song, id int64) bool {
	for _, s := range songs {
		if s.ID == id {
			return true
		}
	}
	return false
}
