package player

import "musichub/model"

// Source tags where the active queue came from.
type Source int

const (
	// SourceCatalog means the queue is the full public catalog.
	SourceCatalog Source = iota
	// SourcePlaylist means the queue is a specific playlist's track list.
	SourcePlaylist
)

func (s Source) String() string {
	switch s {
	case SourceCatalog:
		return "catalog"
	case SourcePlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Queue is the ordered list of tracks eligible for next/previous
// navigation, together with its provenance.
type Queue struct {
	source     Source
	playlistID string
	songs      []*model.Song
}

// NewCatalogQueue builds a queue backed by the full catalog.
func NewCatalogQueue(songs []*model.Song) Queue {
	return Queue{source: SourceCatalog, songs: songs}
}

// NewPlaylistQueue builds a queue backed by one playlist's track list.
func NewPlaylistQueue(playlistID string, songs []*model.Song) Queue {
	return Queue{source: SourcePlaylist, playlistID: playlistID, songs: songs}
}

// Source returns the queue's provenance tag.
func (q Queue) Source() Source {
	return q.source
}

// PlaylistID returns the backing playlist's ID ("" for catalog queues).
func (q Queue) PlaylistID() string {
	return q.playlistID
}

// Songs returns the queued tracks in order.
func (q Queue) Songs() []*model.Song {
	return q.songs
}

// Len returns the number of queued tracks.
func (q Queue) Len() int {
	return len(q.songs)
}

// IndexOf returns the index of the first occurrence of the song, or -1.
// Duplicate tracks tie-break on first occurrence by scan order.
func (q Queue) IndexOf(songID int64) int {
	for i, s := range q.songs {
		if s.ID == songID {
			return i
		}
	}
	return -1
}

// Contains reports whether the song is in the queue.
func (q Queue) Contains(songID int64) bool {
	return q.IndexOf(songID) >= 0
}

// NextAfter returns the track following the given one, or nil at the end
// of the queue or when the track is not queued. No wraparound.
func (q Queue) NextAfter(songID int64) *model.Song {
	i := q.IndexOf(songID)
	if i < 0 || i >= len(q.songs)-1 {
		return nil
	}
	return q.songs[i+1]
}

// PreviousBefore returns the track preceding the given one, or nil at the
// start of the queue or when the track is not queued.
func (q Queue) PreviousBefore(songID int64) *model.Song {
	i := q.IndexOf(songID)
	if i <= 0 {
		return nil
	}
	return q.songs[i-1]
}

// withSong returns a copy of the queue guaranteed to contain the song,
// appending it when the backing list does not include it. This keeps the
// current track a member of its own queue.
func (q Queue) withSong(song *model.Song) Queue {
	if q.Contains(song.ID) {
		return q
	}
	songs := make([]*model.Song, 0, len(q.songs)+1)
	songs = append(songs, q.songs...)
	songs = append(songs, song)
	return Queue{source: q.source, playlistID: q.playlistID, songs: songs}
}
