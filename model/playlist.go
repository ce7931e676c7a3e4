package model

import "time"

// Playlist 表示用户创建的歌单
// Name is not unique per owner; duplicates are allowed.
type Playlist struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaylistSong 表示歌单中的一首歌曲
type PlaylistSong struct {
	PlaylistID string    `json:"playlistId"`
	SongID     int64     `json:"songId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PlaylistWithSongs 包含歌单信息和其包含的歌曲
type PlaylistWithSongs struct {
	Playlist
	Songs []*Song `json:"songs"`
}
