package player

import (
	"context"

	"musichub/model"
)

// Selection tracks the add-to-playlist workflow: a pending multi-select
// set of tracks and the target playlist for the batch add. Persistence is
// delegated entirely to the Library.
type Selection struct {
	open             bool
	songs            []*model.Song
	targetPlaylistID string
	draftName        string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Open starts the workflow, preselecting the given track if any.
func (s *Selection) Open(song *model.Song) {
	s.open = true
	s.songs = nil
	if song != nil {
		s.songs = []*model.Song{song}
	}
}

// Close dismisses the workflow and clears all pending state.
func (s *Selection) Close() {
	s.open = false
	s.songs = nil
	s.targetPlaylistID = ""
	s.draftName = ""
}

// IsOpen reports whether the workflow is active.
func (s *Selection) IsOpen() bool {
	return s.open
}

// Toggle flips the track's membership in the pending set.
func (s *Selection) Toggle(song *model.Song) {
	if song == nil {
		return
	}
	for i, sel := range s.songs {
		if sel.ID == song.ID {
			s.songs = append(s.songs[:i], s.songs[i+1:]...)
			return
		}
	}
	s.songs = append(s.songs, song)
}

// Songs returns the pending tracks in selection order.
func (s *Selection) Songs() []*model.Song {
	return s.songs
}

// SetTarget picks the playlist the batch add will go to.
func (s *Selection) SetTarget(playlistID string) {
	s.targetPlaylistID = playlistID
}

// Target returns the chosen playlist ID ("" when none picked).
func (s *Selection) Target() string {
	return s.targetPlaylistID
}

// SetDraftName stores the name typed for a playlist to be created.
func (s *Selection) SetDraftName(name string) {
	s.draftName = name
}

// DraftName returns the pending new-playlist name.
func (s *Selection) DraftName() string {
	return s.draftName
}

// Apply adds the pending tracks to the target playlist through the
// library and closes the workflow on success. No-op when the selection is
// empty or no target is set.
func (s *Selection) Apply(ctx context.Context, lib *Library) error {
	if len(s.songs) == 0 || s.targetPlaylistID == "" {
		return nil
	}
	if err := lib.AddToPlaylist(ctx, s.targetPlaylistID, s.songs); err != nil {
		return err
	}
	s.Close()
	return nil
}
