package player

import (
	"context"
	"errors"
	"testing"

	"musichub/model"

	"github.com/google/uuid"
)

// fakeProvider is an in-memory CatalogProvider for library tests.
type fakeProvider struct {
	catalog   []*model.Song
	liked     map[int64]bool
	playlists map[string][]int64
	names     map[string]string

	failToggle bool
	failAdd    bool
	failRemove bool
	failDelete bool
}

func newFakeProvider(catalog ...*model.Song) *fakeProvider {
	return &fakeProvider{
		catalog:   catalog,
		liked:     make(map[int64]bool),
		playlists: make(map[string][]int64),
		names:     make(map[string]string),
	}
}

func (f *fakeProvider) FetchCatalog(context.Context) ([]*model.Song, error) {
	return f.catalog, nil
}

func (f *fakeProvider) FetchLiked(context.Context) ([]*model.Song, error) {
	var liked []*model.Song
	for _, s := range f.catalog {
		if f.liked[s.ID] {
			liked = append(liked, s)
		}
	}
	return liked, nil
}

func (f *fakeProvider) FetchPlaylists(context.Context) ([]*model.PlaylistWithSongs, error) {
	var out []*model.PlaylistWithSongs
	for id, songIDs := range f.playlists {
		p := &model.PlaylistWithSongs{
			Playlist: model.Playlist{ID: id, Name: f.names[id]},
			Songs:    []*model.Song{},
		}
		for _, sid := range songIDs {
			for _, s := range f.catalog {
				if s.ID == sid {
					p.Songs = append(p.Songs, s)
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProvider) ToggleLike(_ context.Context, songID int64) (bool, error) {
	if f.failToggle {
		return false, errors.New("provider unavailable")
	}
	f.liked[songID] = !f.liked[songID]
	return f.liked[songID], nil
}

func (f *fakeProvider) CreatePlaylist(_ context.Context, name string) (*model.Playlist, error) {
	id := uuid.NewString()
	f.playlists[id] = []int64{}
	f.names[id] = name
	return &model.Playlist{ID: id, Name: name}, nil
}

func (f *fakeProvider) AddSong(_ context.Context, playlistID string, songID int64) error {
	if f.failAdd {
		return errors.New("provider unavailable")
	}
	f.playlists[playlistID] = append(f.playlists[playlistID], songID)
	return nil
}

func (f *fakeProvider) RemoveSong(_ context.Context, playlistID string, songID int64) error {
	if f.failRemove {
		return errors.New("provider unavailable")
	}
	ids := f.playlists[playlistID]
	next := ids[:0]
	for _, id := range ids {
		if id != songID {
			next = append(next, id)
		}
	}
	f.playlists[playlistID] = next
	return nil
}

func (f *fakeProvider) DeletePlaylist(_ context.Context, playlistID string) error {
	if f.failDelete {
		return errors.New("provider unavailable")
	}
	delete(f.playlists, playlistID)
	return nil
}

func TestLibrary_ToggleLikeIdempotentPair(t *testing.T) {
	ctx := context.Background()
	a := song(1, "a")
	lib := NewLibrary(newFakeProvider(a))
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if err := lib.ToggleLike(ctx, a); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !lib.IsLiked(a.ID) {
		t.Error("song should be liked after first toggle")
	}

	if err := lib.ToggleLike(ctx, a); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if lib.IsLiked(a.ID) {
		t.Error("two toggles must return the liked-set to its original state")
	}
}

func TestLibrary_ToggleLikeRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	a := song(1, "a")
	provider := newFakeProvider(a)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	provider.failToggle = true
	if err := lib.ToggleLike(ctx, a); err == nil {
		t.Fatal("ToggleLike() should fail when the provider does")
	}
	if lib.IsLiked(a.ID) {
		t.Error("local liked-set must roll back after provider failure")
	}
}

func TestLibrary_AddToPlaylistSuppressesDuplicates(t *testing.T) {
	ctx := context.Background()
	a, b := song(1, "a"), song(2, "b")
	provider := newFakeProvider(a, b)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	if err := lib.AddToPlaylist(ctx, p.ID, []*model.Song{a, b}); err != nil {
		t.Fatalf("AddToPlaylist() error = %v", err)
	}
	if err := lib.AddToPlaylist(ctx, p.ID, []*model.Song{a}); err != nil {
		t.Fatalf("AddToPlaylist() error = %v", err)
	}

	if got := len(lib.PlaylistByID(p.ID).Songs); got != 2 {
		t.Errorf("playlist has %d songs, want 2 (duplicates suppressed)", got)
	}
	if got := len(provider.playlists[p.ID]); got != 2 {
		t.Errorf("provider has %d songs, want 2", got)
	}
}

func TestLibrary_AddToPlaylistRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	a, b := song(1, "a"), song(2, "b")
	provider := newFakeProvider(a, b)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	provider.failAdd = true
	if err := lib.AddToPlaylist(ctx, p.ID, []*model.Song{a, b}); err == nil {
		t.Fatal("AddToPlaylist() should fail when the provider does")
	}

	if got := len(lib.PlaylistByID(p.ID).Songs); got != 0 {
		t.Errorf("playlist view has %d songs after rollback, want 0", got)
	}
}

func TestLibrary_RemoveFromPlaylistRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	a := song(1, "a")
	provider := newFakeProvider(a)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if err := lib.AddToPlaylist(ctx, p.ID, []*model.Song{a}); err != nil {
		t.Fatalf("AddToPlaylist() error = %v", err)
	}

	provider.failRemove = true
	if err := lib.RemoveFromPlaylist(ctx, p.ID, a.ID); err == nil {
		t.Fatal("RemoveFromPlaylist() should fail when the provider does")
	}
	if got := len(lib.PlaylistByID(p.ID).Songs); got != 1 {
		t.Errorf("playlist view has %d songs after rollback, want 1", got)
	}
}

func TestLibrary_DeletePlaylistRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	provider.failDelete = true
	if err := lib.DeletePlaylist(ctx, p.ID); err == nil {
		t.Fatal("DeletePlaylist() should fail when the provider does")
	}
	if lib.PlaylistByID(p.ID) == nil {
		t.Error("playlist view must roll back after provider failure")
	}

	provider.failDelete = false
	if err := lib.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlaylist() error = %v", err)
	}
	if lib.PlaylistByID(p.ID) != nil {
		t.Error("playlist should be gone after successful delete")
	}
}

func TestLibrary_DuplicatePlaylistNamesAllowed(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(newFakeProvider())
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	p1, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	p2, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	if p1.ID == p2.ID {
		t.Error("duplicate names must still produce distinct playlists")
	}
	if len(lib.Playlists()) != 2 {
		t.Errorf("library has %d playlists, want 2", len(lib.Playlists()))
	}
}
